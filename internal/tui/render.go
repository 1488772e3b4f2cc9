package tui

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/actionsum/appusage/internal/catalog"
	"github.com/actionsum/appusage/internal/presenter"
	"github.com/actionsum/appusage/pkg/utils"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)
)

const (
	iconWidth    = 3
	timeWidth    = 14
	minNameWidth = 12
)

func title(v presenter.View) string {
	return titleStyle.Render("Usage Events List by: " + utils.FormatDuration(v.Window))
}

// renderPermission draws the AwaitingPermission screen.
func renderPermission(v presenter.View, width int) string {
	lines := []string{
		"This app needs usage access to read per-application usage statistics.",
		"",
		buttonStyle.Render("Allow usage access"),
		"",
		helpStyle.Render("enter/a: open access settings • r: check again • q: quit"),
	}
	if v.Err != nil {
		lines = append(lines, "", errorStyle.Render("Error: "+v.Err.Error()))
	}
	return lipgloss.PlaceHorizontal(max(width, 1), lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// renderUnsupported draws the Unsupported screen.
func renderUnsupported(v presenter.View) string {
	msg := "The usage store on this system is too old to report aggregated usage."
	lines := []string{
		title(v),
		"",
		msg,
		"Start the tracker with a current version to create a new store.",
		"",
		helpStyle.Render("r: check again • q: quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderReport draws the ShowingReport screen around the table view.
func renderReport(v presenter.View, tableView string) string {
	parts := []string{title(v)}
	switch {
	case v.Err != nil:
		parts = append(parts, errorStyle.Render("Error: "+v.Err.Error()))
	case len(v.Report.Records) == 0:
		parts = append(parts, "No usage recorded for launchable applications in this window.")
	default:
		parts = append(parts, baseStyle.Render(tableView))
	}
	parts = append(parts, helpStyle.Render("↑/↓: scroll • r: refresh • q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// columns sizes the table to width.
func columns(width int) []table.Column {
	rest := width - iconWidth - timeWidth - 8
	if rest < 2*minNameWidth {
		rest = 2 * minNameWidth
	}
	name := rest / 2
	return []table.Column{
		{Title: "", Width: iconWidth},
		{Title: "App", Width: name},
		{Title: "Package", Width: rest - name},
		{Title: "Time", Width: timeWidth},
	}
}

// rows turns the report into table rows, in report order.
func rows(v presenter.View) []table.Row {
	out := make([]table.Row, 0, len(v.Report.Records))
	for _, rec := range v.Report.Records {
		out = append(out, table.Row{
			badge(rec.DisplayName, v.Icons[rec.PackageID]),
			rec.DisplayName,
			rec.PackageID,
			utils.FormatDuration(rec.Duration()),
		})
	}
	return out
}

// badge stands in for the application icon: the name's initial when an
// icon file was found, a dot otherwise.
func badge(name string, icon catalog.Icon) string {
	if icon.Path == "" {
		return "·"
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

func statusLine(v presenter.View) string {
	return fmt.Sprintf("%s • %d apps", v.State, len(v.Report.Records))
}
