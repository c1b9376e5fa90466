package fhir

// Resource is a top-level record. Its Kind is the resourceType discriminator;
// it is fixed at construction and written first on encode.
type Resource struct {
	kind string
	Composite
}

func (*Resource) isValue() {}

// NewResource returns an empty resource of the given kind.
func NewResource(kind string) *Resource {
	return &Resource{
		kind:      kind,
		Composite: Composite{Type: kind, members: map[string]Value{}},
	}
}

// Kind returns the resourceType.
func (r *Resource) Kind() string {
	return r.kind
}

// ResourceID returns the logical id, if set.
func (r *Resource) ResourceID() (string, bool) {
	if r.ID == nil {
		return "", false
	}
	return *r.ID, true
}
