// Package models ships the catalogue of datatypes and resources the hfs tool
// knows without a --schema file.
package models

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/pkg/errors"

	"github.com/HeliosSoftware/hfs-sub000/hfs/codec"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	once     sync.Once
	catalog  *schema.Catalog
	registry *codec.Registry
	loadErr  error
)

func load() {
	defs, err := schema.LoadYAML(bytes.NewReader(catalogYAML))
	if err != nil {
		loadErr = errors.Wrap(err, "embedded catalogue")
		return
	}
	if catalog, err = schema.NewCatalog(defs...); err != nil {
		loadErr = errors.Wrap(err, "embedded catalogue")
		return
	}
	if registry, err = codec.Compile(catalog); err != nil {
		loadErr = errors.Wrap(err, "embedded catalogue")
	}
}

// Catalog returns the embedded catalogue.
func Catalog() (*schema.Catalog, error) {
	once.Do(load)
	return catalog, loadErr
}

// Registry returns the codecs compiled from the embedded catalogue. It is
// compiled on first use and shared afterwards.
func Registry() (*codec.Registry, error) {
	once.Do(load)
	return registry, loadErr
}

// Source returns the embedded YAML.
func Source() []byte {
	out := make([]byte, len(catalogYAML))
	copy(out, catalogYAML)
	return out
}
