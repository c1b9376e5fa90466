// Package document reads and writes whole FHIR JSON documents: bytes in,
// resources out. It sits on top of package codec and adds what a caller
// handling files or request bodies needs: BOM skipping, optional comment
// stripping, the parse depth guard, indentation and batch decoding.
package document

import (
	"bytes"
	"context"
	"io"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/jsonc"
	"golang.org/x/sync/errgroup"

	"github.com/HeliosSoftware/hfs-sub000/hfs/codec"
	"github.com/HeliosSoftware/hfs-sub000/hfs/fhir"
	"github.com/HeliosSoftware/hfs-sub000/hfs/tree"
	"github.com/HeliosSoftware/hfs-sub000/log"
)

// ContentType is the media type of the FHIR JSON wire form.
const ContentType = "application/fhir+json"

// DefaultWorkers bounds DecodeBatch when WithWorkers is not given.
const DefaultWorkers = 4

type config struct {
	maxDepth     int
	allowUnknown bool
	comments     bool
	prefix       string
	indent       string
	workers      int
	logger       logrus.FieldLogger
}

// Option configures a Document.
type Option func(*config)

// WithMaxDepth bounds nesting of composites, extensions and resources.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithUnknownMembers drops undeclared members instead of failing.
func WithUnknownMembers(allow bool) Option {
	return func(c *config) { c.allowUnknown = allow }
}

// WithComments accepts // and /* */ comments and trailing commas in input.
func WithComments(allow bool) Option {
	return func(c *config) { c.comments = allow }
}

// WithIndent makes Marshal write indented output.
func WithIndent(prefix, indent string) Option {
	return func(c *config) { c.prefix, c.indent = prefix, indent }
}

// WithWorkers bounds the goroutines DecodeBatch uses.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.logger = l }
}

// Document converts between FHIR JSON bytes and resources. It is safe for
// concurrent use.
type Document struct {
	cfg        config
	dec        *codec.Decoder
	enc        *codec.Encoder
	parseDepth int
}

// New returns a Document over reg.
func New(reg *codec.Registry, opts ...Option) *Document {
	cfg := config{workers: DefaultWorkers, logger: log.Codec}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	codecOpts := []codec.Option{
		codec.WithMaxDepth(cfg.maxDepth),
		codec.WithUnknownMembers(cfg.allowUnknown),
		codec.WithLogger(cfg.logger),
	}
	d := &Document{
		cfg: cfg,
		dec: codec.NewDecoder(reg, codecOpts...),
		enc: codec.NewEncoder(reg, codecOpts...),
	}
	// one codec level spans at most four JSON levels
	d.parseDepth = 4*d.dec.Options().MaxDepth + 16
	return d
}

// ContentType returns the media type of documents this package writes.
func (d *Document) ContentType() string {
	return ContentType
}

// Unmarshal decodes one document.
func (d *Document) Unmarshal(data []byte) (*fhir.Resource, error) {
	return d.Decode(bytes.NewReader(data))
}

// Decode reads r to the end and decodes it as one document. A leading UTF-8
// byte order mark is skipped.
func (d *Document) Decode(r io.Reader) (*fhir.Resource, error) {
	data, err := io.ReadAll(utfbom.SkipOnly(r))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read document")
	}
	if d.cfg.comments {
		data = jsonc.ToJSON(data)
	}
	n, err := tree.Parse(data, d.parseDepth)
	if err != nil {
		return nil, err
	}
	return d.dec.Decode(n)
}

// Marshal encodes r.
func (d *Document) Marshal(r *fhir.Resource) ([]byte, error) {
	n, err := d.enc.Encode(r)
	if err != nil {
		return nil, err
	}
	if d.cfg.indent != "" || d.cfg.prefix != "" {
		return tree.MarshalIndent(n, d.cfg.prefix, d.cfg.indent)
	}
	return tree.Marshal(n)
}

// Encode writes r to w followed by a newline.
func (d *Document) Encode(w io.Writer, r *fhir.Resource) error {
	b, err := d.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "failed to write document")
	}
	return nil
}

// Result is the outcome of one document of a batch.
type Result struct {
	Resource *fhir.Resource
	Err      error
}

// DecodeBatch decodes independent documents concurrently. Results are in
// input order; a failing document does not stop the others. Documents not
// yet started when ctx is done get ctx's error.
func (d *Document) DecodeBatch(ctx context.Context, docs [][]byte) []Result {
	results := make([]Result, len(docs))
	d.cfg.logger.WithField("documents", len(docs)).Debug("decoding batch")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.workers)
	for i := range docs {
		i := i
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Resource, results[i].Err = d.Unmarshal(docs[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}
