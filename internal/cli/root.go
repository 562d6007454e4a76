package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andy/kihopunch/internal/app"
	"github.com/andy/kihopunch/internal/keyring"
	"github.com/andy/kihopunch/internal/kiho"
	"github.com/spf13/cobra"
)

// commands annotated with noBanner print machine readable output only
const annotationNoBanner = "kihopunch/no-banner"

type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	opts  app.Options
	app   *app.App
	start time.Time
}

// NewRootCommand builds the kihopunch command tree on the given streams
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "kihopunch",
		Short: "Punch worktime in and out of the Kiho worktime API",
		Long: `kihopunch starts and stops worktime in the Kiho punch API.

Without a description 'kihopunch start' offers the recurring tasks from the
config file. Tasks named "Group | Description" are grouped under their group.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.start = time.Now()
			if cmd.Annotations[annotationNoBanner] == "" {
				printBanner(c.out)
				if c.opts.DryRun && c.opts.Verbose == 0 {
					printLine(c.out, "NOTE: This is a DRY-RUN!")
				}
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Logger.Debug("finished", "elapsed", time.Since(c.start).Round(time.Millisecond))
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.opts.DryRun, "dry-run", "n", false, "build and log requests but do not send them")
	flags.CountVarP(&c.opts.Verbose, "verbose", "v", "verbose output (-vv also dumps HTTP requests and responses)")
	flags.StringVarP(&c.opts.ConfigPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/kiho-worktime-puncher/config.yaml)")

	root.AddCommand(
		c.newGetCommand(),
		c.newStartCommand(),
		c.newStopCommand(),
		c.newBreakCommand(),
		c.newConfigCommand(),
	)

	return root
}

// Execute runs the command tree against the process streams
func Execute(ctx context.Context, in io.Reader, out, errOut io.Writer, args []string) error {
	root := NewRootCommand(in, out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if kiho.IsUnauthorized(err) {
		return fmt.Errorf("%w\ncheck the API key: 'kihopunch config set-key' or %s", err, keyring.EnvAPIKey)
	}
	return err
}

// load initializes the app on first use so that commands which only touch
// the config file never resolve secrets
func (c *cli) load(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	opts := c.opts
	if opts.LogOutput == nil {
		opts.LogOutput = c.errOut
	}

	a, err := app.New(cmd.Context(), opts)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}
