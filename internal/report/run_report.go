package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"datagen-service/internal/generator"
	"datagen-service/pkg/models"
)

//go:embed run_report.html
var runReportHTML string

var runReportTmpl = template.Must(template.New("run_report").Parse(runReportHTML))

type stageRow struct {
	Stage      string
	Count      int
	Conversion string
}

type runReportData struct {
	RunID     string
	RunDate   string
	UserCount int
	Events    int
	Sessions  int
	Control   int
	Treatment int
	Stages    []stageRow
	Duration  string
	Year      int
}

// RenderRunReport builds the HTML summary mailed after a completed run.
func RenderRunReport(run *models.GenerationRun, sum generator.FunnelSummary, duration time.Duration) (string, error) {
	data := runReportData{
		RunID:     run.ID,
		RunDate:   run.RunDate.UTC().Format("2006-01-02"),
		UserCount: run.UserCount,
		Events:    sum.TotalEvents,
		Sessions:  sum.Sessions,
		Control:   sum.ABGroups[models.ABControl],
		Treatment: sum.ABGroups[models.ABTreatment],
		Duration:  duration.Round(time.Millisecond).String(),
		Year:      time.Now().Year(),
	}
	for _, st := range sum.Stages {
		data.Stages = append(data.Stages, stageRow{
			Stage:      string(st.Stage),
			Count:      st.Count,
			Conversion: fmt.Sprintf("%.1f%%", st.Conversion*100),
		})
	}

	var buf strings.Builder
	if err := runReportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render run report: %w", err)
	}
	return buf.String(), nil
}

// RunReportSubject is the mail subject line for a run.
func RunReportSubject(run *models.GenerationRun) string {
	return fmt.Sprintf("Synthetic data run %s — %d users, %d events", run.RunDate.UTC().Format("2006-01-02"), run.UserCount, run.EventCount)
}
