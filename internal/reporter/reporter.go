// Package reporter renders usage reports for the command line.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/actionsum/appusage/internal/catalog"
	"github.com/actionsum/appusage/internal/usage"
	"github.com/actionsum/appusage/pkg/utils"
)

// FormatText writes the report as an aligned table, longest first.
func FormatText(w io.Writer, report usage.Report) error {
	title := color.New(color.Bold).SprintFunc()
	if _, err := fmt.Fprintf(w, "%s %s\n", title("Usage Events List by:"), utils.FormatDuration(report.Window)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Period: %s to %s\n",
		report.Begin.Local().Format("2006-01-02 15:04"),
		report.End.Local().Format("2006-01-02 15:04")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total Time: %s\n\n", utils.FormatDuration(time.Duration(report.TotalMs())*time.Millisecond)); err != nil {
		return err
	}

	if len(report.Records) == 0 {
		_, err := fmt.Fprintln(w, "No usage recorded for launchable applications in this window.")
		return err
	}

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	tbl := table.New("App", "Package", "Time", "Share").
		WithHeaderFormatter(headerFmt).
		WithWriter(w)

	shares := report.Shares()
	for i, rec := range report.Records {
		tbl.AddRow(
			truncate(rec.DisplayName, 30),
			truncate(rec.PackageID, 40),
			utils.FormatDuration(rec.Duration()),
			fmt.Sprintf("%.1f%%", shares[i]),
		)
	}

	tbl.Print()
	return nil
}

type jsonRecord struct {
	PackageID            string  `json:"package_id"`
	DisplayName          string  `json:"display_name"`
	ForegroundDurationMs int64   `json:"foreground_duration_ms"`
	Duration             string  `json:"duration"`
	Share                float64 `json:"share"`
	Icon                 string  `json:"icon,omitempty"`
}

type jsonReport struct {
	WindowMs int64        `json:"window_ms"`
	Begin    time.Time    `json:"begin"`
	End      time.Time    `json:"end"`
	TotalMs  int64        `json:"total_ms"`
	Records  []jsonRecord `json:"records"`
}

// FormatJSON returns the report as indented JSON. icons may be nil.
func FormatJSON(report usage.Report, icons map[string]catalog.Icon) ([]byte, error) {
	out := jsonReport{
		WindowMs: report.Window.Milliseconds(),
		Begin:    report.Begin.UTC(),
		End:      report.End.UTC(),
		TotalMs:  report.TotalMs(),
		Records:  make([]jsonRecord, 0, len(report.Records)),
	}

	shares := report.Shares()
	for i, rec := range report.Records {
		out.Records = append(out.Records, jsonRecord{
			PackageID:            rec.PackageID,
			DisplayName:          rec.DisplayName,
			ForegroundDurationMs: rec.ForegroundDurationMs,
			Duration:             utils.FormatDuration(rec.Duration()),
			Share:                shares[i],
			Icon:                 icons[rec.PackageID].Path,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

// truncate shortens a string to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
