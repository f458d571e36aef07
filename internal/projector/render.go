package projector

import (
	"bytes"
	"fmt"
	"html/template"

	"training-planner/internal/domain"
)

var fragments = template.Must(template.New("fragments").Parse(
	`{{define "text"}}{{.}}{{end}}` +
		`{{define "schedule"}}{{range .}}
                <tr>
                    <td class="day-cell">{{.Day}}</td>
                    <td class="content-cell">{{.Content}}</td>
                    <td class="time-cell">{{.Duration}}</td>
                    <td class="content-cell">{{.Notes}}</td>
                </tr>{{end}}{{end}}` +
		`{{define "tips"}}{{range .}}<li>{{.}}</li>{{end}}{{end}}` +
		`{{define "strategies"}}{{range .}}
                <div class="strategy-item">
                    <h4>{{.Title}}</h4>
                    <p>{{.Description}}</p>
                </div>{{end}}{{end}}`,
))

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("projector: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func renderText(s string) ([]byte, error) { return render("text", s) }

func renderSchedule(entries []domain.ScheduleEntry) ([]byte, error) {
	return render("schedule", entries)
}

func renderTips(tips []string) ([]byte, error) { return render("tips", tips) }

func renderStrategies(strategies []domain.Strategy) ([]byte, error) {
	return render("strategies", strategies)
}
