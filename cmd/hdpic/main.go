package main

import (
	"bytes"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"text/tabwriter"

	"github.com/bodgit/hdpic"
	"github.com/bodgit/hdpic/picture"
	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) hclog.Logger {
	level := hclog.Info
	if c.Bool("verbose") {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   c.App.Name,
		Level:  level,
		Output: os.Stderr,
	})
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, expected WIDTHxHEIGHT", s)
	}
	return w, h, nil
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowAppHelpAndExit(c, 1)
	}

	// Reject a bad prefix before the catalog touches the disk
	if _, err := hdpic.ValidatePrefix(c.Args().Get(1)); err != nil {
		return cli.Exit(err, 1)
	}

	logger := newLogger(c)

	var opts []picture.Option
	if s := c.String("max-size"); s != "" {
		w, h, err := parseSize(s)
		if err != nil {
			return cli.Exit(err, 1)
		}
		opts = append(opts, picture.WithMaxSize(w, h))
	}

	options := []hdpic.Option{hdpic.WithLogger(logger)}
	if db := c.String("db"); db != "" {
		catalog, err := hdpic.OpenCatalog(db)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer catalog.Close()
		options = append(options, hdpic.WithCatalog(catalog))
	}

	converter := hdpic.New(picture.NewDecoder(opts...), options...)
	if _, err := converter.Convert(c.Args().Get(0), c.Args().Get(1), c.String("outdir")); err != nil {
		return cli.Exit(err, 1)
	}

	return nil
}

func list(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer f.Close()

	b, err := hdpic.Decompress(f)
	if err != nil {
		return cli.Exit(err, 1)
	}

	payloads, err := hdpic.ReadContainer(bytes.NewReader(b))
	if err != nil {
		return cli.Exit(err, 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 8, 1, ' ', 0)
	for _, p := range payloads {
		fmt.Fprintf(w, "%s%s\t%d\n", p.Name, hdpic.EntrySuffix, len(p.Data))
	}
	return w.Flush()
}

func newApp() (*cli.App, error) {
	app := cli.NewApp()

	app.Name = "hdpic"
	app.Usage = "Convert pictures into TI-84 Plus CE appvars"
	app.Version = "1.0.0"
	app.ArgsUsage = "IMAGE PREFIX"

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "outdir",
			Aliases: []string{"o"},
			EnvVars: []string{"HDPIC_OUTDIR"},
			Value:   cwd,
			Usage:   "write the .8xg file to this directory",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"HDPIC_DB"},
			Usage:   "record conversions in this database",
		},
		&cli.StringFlag{
			Name:  "max-size",
			Usage: "scale pictures down to fit `WIDTHxHEIGHT`",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = convert

	app.Commands = []*cli.Command{
		{
			Name:      "list",
			Usage:     "List the appvars in an .8xg file",
			ArgsUsage: "FILE",
			Action:    list,
		},
	}

	return app, nil
}

func main() {
	app, err := newApp()
	if err != nil {
		log.Fatal(err)
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
