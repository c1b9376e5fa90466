package schema

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// file is the layout of a catalogue file:
//
//	definitions:
//	  - name: Quantity
//	    kind: datatype
//	    elements:
//	      - path: value
//	        type: [decimal]
//	      - path: unit
//	        type: [string]
type file struct {
	Definitions []*Definition `yaml:"definitions"`
}

// LoadYAML reads definitions from a catalogue file. Unknown keys are errors,
// a typo in a catalogue should not silently drop an element.
func LoadYAML(r io.Reader) ([]*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.New("catalogue is empty")
		}
		return nil, errors.Wrap(err, "failed to decode catalogue")
	}
	return f.Definitions, nil
}

// LoadFile reads and validates a catalogue file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalogue")
	}
	defer f.Close()

	defs, err := LoadYAML(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	catalog, err := NewCatalog(defs...)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid catalogue %s", path)
	}
	return catalog, nil
}
