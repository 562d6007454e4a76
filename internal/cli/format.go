package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/andy/kihopunch/internal/app"
	"github.com/andy/kihopunch/internal/config"
	"github.com/andy/kihopunch/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// punchTimeLayout renders API timestamps as dd.mm.yyyy HH:MM:SS
const punchTimeLayout = "02.01.2006 15:04:05"

var (
	borderColor = lipgloss.Color("63")

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Bold(true).
			Padding(0, 4)

	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func printLine(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}

func printBanner(w io.Writer) {
	printLine(w, bannerStyle.Render(fmt.Sprintf("%s v%s", config.AppName, app.Version)))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		})
}

// renderPunchTable formats punch lines in the given order
func renderPunchTable(punches []domain.Punch) string {
	t := newTable("Punch Timestamp", "Type", "Punch ID", "Cost Centre Name", "Punch Description")
	for _, p := range punches {
		t.Row(
			p.Timestamp.Format(punchTimeLayout),
			string(p.Type),
			strconv.FormatInt(p.ID, 10),
			p.CostCentreName(),
			p.Description,
		)
	}
	return t.String()
}
