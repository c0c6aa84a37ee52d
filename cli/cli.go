package cli

import (
	"context"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hocon/cli/cmd"
	"github.com/ardnew/hocon/lang"
	"github.com/ardnew/hocon/log"
	"github.com/ardnew/hocon/pkg"
)

// CLI is the top-level command-line interface for hocon.
type CLI struct {
	Log    logConfig   `embed:"" group:"log"    prefix:"log-"`
	Pprof  pprofConfig `embed:"" group:"pprof"  prefix:"pprof-"`
	Engine cmd.Engine  `embed:"" group:"engine"`

	Version kong.VersionFlag `help:"Print version and exit."`

	Init  cmd.Init  `cmd:"" help:"Initialize configuration file"`
	Get   cmd.Get   `cmd:"" help:"Print the value at a path"`
	Query cmd.Query `cmd:"" help:"Evaluate an expression over the document"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Resolve and print documents"`
}

// Run parses args, applies configuration from flags and the configuration
// file, and runs the selected command. Parse failures call exit through
// kong; command failures are returned.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Log flags take effect before parsing so that loading the
	// configuration file is logged as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(ctx, exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

func (c *CLI) options(ctx context.Context, exit func(int)) []kong.Option {
	file := configPath()

	vars := kong.Vars{
		cmd.ConfigIdentifier: file,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version(),
	}

	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{
			c.Log.group(), c.Pprof.group(), c.Engine.Group(),
		}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.Bind(&c.Engine),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, filepath.Join(pkg.ConfigDir(), "config.json")),
		kong.Configuration(
			resolve(ctx, cmd.ConfigObject, lang.WithLogger(log.Default())), file),
		vars.CloneWith(c.Log.vars()).
			CloneWith(c.Pprof.vars()).
			CloneWith(c.Engine.Vars()),
	}
}
