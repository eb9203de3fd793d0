package web

import (
	"embed"
	"html/template"

	"labattendance/internal/attendance"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// row is a record prepared for display.
type row struct {
	Identifier string
	Name       string
	Date       string
	ClockIn    string
	ClockOut   string
	Open       bool
}

func rows(records []attendance.Record) []row {
	out := make([]row, 0, len(records))
	for _, r := range records {
		v := row{
			Identifier: r.Identifier,
			Name:       r.Name,
			Date:       r.Date,
			ClockIn:    attendance.FormatTime12h(r.ClockIn),
			ClockOut:   "---",
			Open:       r.Open(),
		}
		if r.ClockOut != nil {
			v.ClockOut = attendance.FormatTime12h(*r.ClockOut)
		}
		out = append(out, v)
	}
	return out
}
