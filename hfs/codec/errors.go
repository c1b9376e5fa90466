package codec

import (
	"fmt"
	"strings"
)

// DecodeError is implemented by every error the decoder reports about the
// document itself. Location points at the offending fragment.
type DecodeError interface {
	error
	Location() Path
}

func located(p Path, msg string) string {
	if len(p) == 0 {
		return msg
	}
	return p.String() + ": " + msg
}

// LexicalError reports a node that does not have the form its declared type
// requires: a primitive that does not lex, or an object where an array
// belongs.
type LexicalError struct {
	Path   Path
	Type   string
	Reason string
}

func (e *LexicalError) Error() string {
	return located(e.Path, fmt.Sprintf("invalid %s: %s", e.Type, e.Reason))
}

func (e *LexicalError) Location() Path { return e.Path }

// AmbiguousChoiceError reports two or more arms of one choice present at
// once. Keys lists every matched wire key.
type AmbiguousChoiceError struct {
	Path   Path
	Choice string
	Keys   []string
}

func (e *AmbiguousChoiceError) Error() string {
	return located(e.Path, fmt.Sprintf("ambiguous choice %s[x]: found %s", e.Choice, strings.Join(e.Keys, ", ")))
}

func (e *AmbiguousChoiceError) Location() Path { return e.Path }

// MissingRequiredMemberError reports a required member that is absent.
type MissingRequiredMemberError struct {
	Path   Path
	Member string
}

func (e *MissingRequiredMemberError) Error() string {
	return located(e.Path, fmt.Sprintf("missing required member %s", e.Member))
}

func (e *MissingRequiredMemberError) Location() Path { return e.Path }

// UnrecognizedMemberError reports a member the schema does not declare. Path
// includes the member itself.
type UnrecognizedMemberError struct {
	Path   Path
	Member string
}

func (e *UnrecognizedMemberError) Error() string {
	return located(e.Path, fmt.Sprintf("unrecognized member %q", e.Member))
}

func (e *UnrecognizedMemberError) Location() Path { return e.Path }

// MissingDiscriminatorError reports a resource object without resourceType.
type MissingDiscriminatorError struct {
	Path Path
}

func (e *MissingDiscriminatorError) Error() string {
	return located(e.Path, "missing resourceType")
}

func (e *MissingDiscriminatorError) Location() Path { return e.Path }

// UnknownResourceKindError reports a resourceType the registry does not
// know, usually a producer on a newer schema version.
type UnknownResourceKindError struct {
	Path Path
	Kind string
}

func (e *UnknownResourceKindError) Error() string {
	return located(e.Path, fmt.Sprintf("unknown resource kind %q", e.Kind))
}

func (e *UnknownResourceKindError) Location() Path { return e.Path }

// RecursionLimitExceededError reports nesting of composites, extensions and
// contained resources beyond the configured bound.
type RecursionLimitExceededError struct {
	Path  Path
	Limit int
}

func (e *RecursionLimitExceededError) Error() string {
	return located(e.Path, fmt.Sprintf("nesting exceeds %d levels", e.Limit))
}

func (e *RecursionLimitExceededError) Location() Path { return e.Path }

// EncodeError reports an in-memory value the encoder refuses to write, such
// as a choice with no arm selected. It indicates a bug in the code that
// built the value rather than bad input.
type EncodeError struct {
	Path   Path
	Reason string
}

func (e *EncodeError) Error() string {
	return located(e.Path, "cannot encode: "+e.Reason)
}

var (
	_ DecodeError = (*LexicalError)(nil)
	_ DecodeError = (*AmbiguousChoiceError)(nil)
	_ DecodeError = (*MissingRequiredMemberError)(nil)
	_ DecodeError = (*UnrecognizedMemberError)(nil)
	_ DecodeError = (*MissingDiscriminatorError)(nil)
	_ DecodeError = (*UnknownResourceKindError)(nil)
	_ DecodeError = (*RecursionLimitExceededError)(nil)
)
