package cli

import (
	"context"
	"strings"

	"github.com/andy/kihopunch/internal/app"
	"github.com/andy/kihopunch/internal/domain"
	"github.com/andy/kihopunch/internal/recurring"
	"github.com/andy/kihopunch/internal/tui"
	"github.com/spf13/cobra"
)

func (c *cli) newStartCommand() *cobra.Command {
	var (
		useTUI     bool
		costCentre int64
	)

	cmd := &cobra.Command{
		Use:   "start [DESCRIPTION]",
		Short: "Start worktime with a LOGIN punch",
		Long: `Start worktime with a LOGIN punch.

Without a description you are asked to choose one of the recurring tasks
from the config file. The customer cost centre is picked from the
cost_centre_rules unless --ccc is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load(cmd)
			if err != nil {
				return err
			}
			if err := a.RequireAPIKey(); err != nil {
				return err
			}

			description := strings.TrimSpace(strings.Join(args, " "))
			if description == "" {
				a.Logger.Info("no punch description given")
				description, err = c.chooseRecurring(cmd.Context(), a, useTUI)
				if err != nil {
					return err
				}
			}

			punch, err := a.PunchService.Start(cmd.Context(), description, costCentre)
			if err != nil {
				return err
			}
			c.printCreated(punch)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useTUI, "tui", false, "choose the recurring task in an interactive picker")
	cmd.Flags().Int64Var(&costCentre, "ccc", 0, "customer cost centre ID (overrides the configured rules)")

	return cmd
}

func (c *cli) newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop worktime with a LOGOUT punch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load(cmd)
			if err != nil {
				return err
			}
			if err := a.RequireAPIKey(); err != nil {
				return err
			}

			punch, err := a.PunchService.Stop(cmd.Context())
			if err != nil {
				return err
			}
			c.printCreated(punch)
			return nil
		},
	}
}

func (c *cli) newBreakCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "break",
		Short: "Start a break (not supported yet)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return domain.ErrBreakUnsupported
		},
	}
}

func (c *cli) chooseRecurring(ctx context.Context, a *app.App, useTUI bool) (string, error) {
	tasks := a.Config.RecurringTasks
	a.Logger.Debug("recurring tasks available", "tasks", tasks)

	if useTUI {
		return tui.Pick(ctx, c.in, c.out, tasks)
	}
	return recurring.Run(ctx, c.in, c.out, tasks)
}

// printCreated shows the punch line the API created; dry runs have none
func (c *cli) printCreated(punch *domain.Punch) {
	if punch == nil {
		return
	}
	printLine(c.out, headingStyle.Render("Following new punch line created:"))
	printLine(c.out, renderPunchTable([]domain.Punch{*punch}))
}
