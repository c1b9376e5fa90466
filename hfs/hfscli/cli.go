package hfscli

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/HeliosSoftware/hfs-sub000/conf"
	"github.com/HeliosSoftware/hfs-sub000/hfs/codec"
	"github.com/HeliosSoftware/hfs-sub000/hfs/document"
	"github.com/HeliosSoftware/hfs-sub000/hfs/models"
	"github.com/HeliosSoftware/hfs-sub000/hfs/outcome"
	"github.com/HeliosSoftware/hfs-sub000/hfs/schema"
	"github.com/HeliosSoftware/hfs-sub000/log"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "hfs"
const Usage = "FHIR JSON validation and formatting"

// Version is set at link time.
var Version = "latest"

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = Version

	var schemaPath string
	var maxDepth int
	var allowUnknown, comments bool
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "schema",
			Usage:       "YAML catalogue of datatypes and resources (default: built-in sample)",
			Destination: &schemaPath,
		},
		cli.IntFlag{
			Name:        "max-depth",
			Usage:       "maximum nesting of composites, extensions and resources",
			Value:       conf.GetEnvInt("HFS_MAX_DEPTH", codec.DefaultMaxDepth),
			Destination: &maxDepth,
		},
		cli.BoolFlag{
			Name:        "allow-unknown",
			Usage:       "drop undeclared members with a warning instead of failing",
			Destination: &allowUnknown,
		},
		cli.BoolFlag{
			Name:        "comments",
			Usage:       "accept // and /* */ comments in input",
			Destination: &comments,
		},
	}

	newDocument := func(opts ...document.Option) (*codec.Registry, *document.Document, error) {
		reg, err := loadRegistry(schemaPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append([]document.Option{
			document.WithMaxDepth(maxDepth),
			document.WithUnknownMembers(allowUnknown || conf.GetEnvBool("HFS_ALLOW_UNKNOWN_MEMBERS", false)),
			document.WithComments(comments),
			document.WithWorkers(conf.GetEnvInt("HFS_BATCH_WORKERS", document.DefaultWorkers)),
		}, opts...)
		return reg, document.New(reg, opts...), nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "validate",
			Usage:     "Decode each file and report the first error found in it",
			ArgsUsage: "FILE...",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "outcome",
					Usage: "report failures as OperationOutcome JSON",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return errors.New("at least one FILE must be provided")
				}
				_, doc, err := newDocument()
				if err != nil {
					return err
				}
				report := plainReport
				if c.Bool("outcome") {
					report = outcomeReport
				}
				return validate(app, doc, c.Args(), report)
			},
		},
		{
			Name:      "format",
			Usage:     "Decode a file and write it back indented, members in schema order",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return errors.New("exactly one FILE must be provided")
				}
				_, doc, err := newDocument(document.WithIndent("", "  "))
				if err != nil {
					return err
				}
				return format(app, doc, c.Args().First())
			},
		},
		{
			Name:  "kinds",
			Usage: "List the resource kinds the catalogue defines",
			Action: func(c *cli.Context) error {
				reg, _, err := newDocument()
				if err != nil {
					return err
				}
				for _, kind := range reg.Kinds() {
					fmt.Fprintln(app.Writer, kind)
				}
				return nil
			},
		},
	}
	return app
}

func loadRegistry(path string) (*codec.Registry, error) {
	if path == "" {
		return models.Registry()
	}
	cat, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := codec.Compile(cat)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile %s", path)
	}
	return reg, nil
}

// reporter formats the failure of one file.
type reporter func(file string, err error) string

func plainReport(file string, err error) string {
	return fmt.Sprintf("%s: %s", file, err)
}

// outcomeReport always encodes with the built-in catalogue, which has
// OperationOutcome whatever --schema says.
func outcomeReport(file string, err error) string {
	reg, regErr := models.Registry()
	if regErr != nil {
		return plainReport(file, err)
	}
	b, encErr := document.New(reg).Marshal(outcome.FromError(err))
	if encErr != nil {
		return plainReport(file, err)
	}
	return fmt.Sprintf("%s: %s", file, b)
}

func validate(app *cli.App, doc *document.Document, files []string, report reporter) error {
	docs := make([][]byte, len(files))
	readErrs := make([]error, len(files))
	for i, file := range files {
		docs[i], readErrs[i] = os.ReadFile(file)
	}

	failed := 0
	for i, res := range doc.DecodeBatch(context.Background(), docs) {
		err := readErrs[i]
		if err == nil {
			err = res.Err
		}
		if err != nil {
			failed++
			log.CLI.WithField("file", files[i]).Warn(err)
			fmt.Fprintln(app.Writer, report(files[i], err))
			continue
		}
		fmt.Fprintf(app.Writer, "ok %s (%s)\n", files[i], res.Resource.Kind())
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func format(app *cli.App, doc *document.Document, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	r, err := doc.Decode(f)
	if err != nil {
		return errors.Wrap(err, file)
	}
	return doc.Encode(app.Writer, r)
}
