package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/andy/kihopunch/internal/domain"
	"github.com/andy/kihopunch/internal/recurring"
	"github.com/spf13/cobra"
)

func (c *cli) newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show configuration, recurring tasks or punch lines",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "config",
			Short: "Show the loaded configuration (API key masked)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.load(cmd)
				if err != nil {
					return err
				}
				data, err := a.Config.Redacted().YAML()
				if err != nil {
					return err
				}
				printLine(c.out, headingStyle.Render(fmt.Sprintf("Current configuration (%s):", a.ConfigPath)))
				fmt.Fprint(c.out, string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "ccc",
			Short: "Show customer cost centres and how descriptions map to them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.load(cmd)
				if err != nil {
					return err
				}

				printLine(c.out, headingStyle.Render("Available 'Customer Cost Centres':"))
				t := newTable("ID", "Name")
				for _, id := range slices.Sorted(maps.Keys(a.Config.CostCentres)) {
					t.Row(id, a.Config.CostCentres[id])
				}
				printLine(c.out, t.String())

				printLine(c.out, headingStyle.Render("Cost centre rules:"))
				rules := newTable("Description contains", "Cost Centre ID")
				for _, r := range a.Config.CostCentreRules {
					rules.Row(r.Contains, strconv.FormatInt(r.ID, 10))
				}
				printLine(c.out, rules.String())
				printLine(c.out, fmt.Sprintf("Default cost centre: %d", a.Config.DefaultCostCentre))
				return nil
			},
		},
		&cobra.Command{
			Use:   "tasks",
			Short: "Show the recurring tasks grouped",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := c.load(cmd)
				if err != nil {
					return err
				}

				grouping := recurring.GroupTasks(a.Config.RecurringTasks)
				printLine(c.out, headingStyle.Render("Available 'Recurring Tasks':"))
				if grouping.Len() == 0 {
					printLine(c.out, "NONE FOUND!")
					return nil
				}
				for _, g := range grouping.Ordered() {
					printLine(c.out, g.Name+":")
					for _, item := range g.Items {
						printLine(c.out, "  - "+item)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "json",
			Short: "Show example punch request bodies",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.printExampleJSON()
			},
		},
		c.newLatestCommand(),
	)

	return cmd
}

func (c *cli) newLatestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "latest COUNT [TYPE]",
		Short: "List the latest COUNT punch lines, optionally only of TYPE",
		Long: `List the latest COUNT punch lines in ascending timestamp order.

TYPE is one of BREAK, LOGIN or LOGOUT (case-insensitive).`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"BREAK", "LOGIN", "LOGOUT"},
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count <= 0 {
				return fmt.Errorf("invalid punch count %q: must be a positive integer", args[0])
			}

			var punchType *domain.PunchType
			if len(args) == 2 {
				pt, err := domain.ParsePunchType(args[1])
				if err != nil {
					return err
				}
				punchType = &pt
			}

			a, err := c.load(cmd)
			if err != nil {
				return err
			}
			if err := a.RequireAPIKey(); err != nil {
				return err
			}

			punches, err := a.PunchService.Latest(cmd.Context(), count, punchType)
			if err != nil {
				return err
			}
			if a.Options.DryRun {
				return nil
			}

			header := fmt.Sprintf("Latest %d worktime punch line(s) in ascending order:", count)
			if punchType != nil {
				header = fmt.Sprintf("Latest %d worktime %s punch line(s) in ascending order:", count, *punchType)
			}
			printLine(c.out, headingStyle.Render(header))
			if len(punches) == 0 {
				printLine(c.out, "NONE FOUND!")
				return nil
			}
			printLine(c.out, renderPunchTable(punches))
			return nil
		},
	}
}

func (c *cli) printExampleJSON() error {
	at := time.Date(2023, 8, 22, 14, 9, 9, 0, time.FixedZone("EEST", 3*60*60))

	login, err := domain.NewLoginPunch("Rusting it out", 101124, at)
	if err != nil {
		return err
	}
	logout := domain.NewLogoutPunch(at.Add(-14 * time.Second))

	for _, ex := range []struct {
		title string
		body  *domain.NewPunchRequest
	}{
		{"JSON BODY FOR LOGIN (NOTE: With 'customerCostcentre'):", login},
		{"JSON BODY FOR LOGOUT:", logout},
	} {
		data, err := json.MarshalIndent(ex.body, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal example: %w", err)
		}
		printLine(c.out, headingStyle.Render(ex.title))
		printLine(c.out, string(data))
		printLine(c.out, "")
	}

	printLine(c.out, mutedStyle.Render("Responses wrap the created punch line in {\"result\": {...}}."))
	return nil
}
