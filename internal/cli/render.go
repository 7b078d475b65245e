package cli

import (
	"fmt"
	"io"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/service"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

const barWidth = 20

func renderQuestion(w io.Writer, s *navigator.SurveyState) {
	if s == nil {
		return
	}
	q := s.Question

	fmt.Fprintln(w)
	dimColor.Fprintf(w, "Question %d of %d  |  %s  |  %d answered\n", s.Position+1, s.Total, q.Category, s.Answered)
	titleColor.Fprintln(w, q.Text)
	if q.Elaboration != "" {
		dimColor.Fprintln(w, q.Elaboration)
	}

	current, answered := s.Answers[q.ID]
	for i, opt := range q.Options {
		marker := " "
		if answered && opt == current {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %d) %s\n", marker, i+1, opt)
	}
}

// scoreBar draws a fixed-width bar for a 0-100 score
func scoreBar(score int) string {
	filled := score * barWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func scoreColor(score int) *color.Color {
	switch {
	case score <= 25:
		return color.New(color.FgRed)
	case score <= 50:
		return color.New(color.FgYellow)
	case score <= 75:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgGreen)
	}
}

func priorityColor(p model.Priority) *color.Color {
	switch p {
	case model.PriorityHigh:
		return color.New(color.FgRed, color.Bold)
	case model.PriorityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func renderReport(w io.Writer, r model.Report) {
	fmt.Fprintln(w)
	titleColor.Fprintf(w, "AI Maturity Report: %s\n", r.Organization.Organization)
	dimColor.Fprintln(w, r.Organization.OrgType)

	fmt.Fprintf(w, "\nOverall score: ")
	scoreColor(r.OverallScore).Fprintf(w, "%d/100", r.OverallScore)
	fmt.Fprintf(w, "  %s\n", r.MaturityLevel.Level)
	dimColor.Fprintln(w, r.MaturityLevel.Description)

	if r.PreviousScore != nil && r.ScoreDelta != nil {
		delta := *r.ScoreDelta
		switch {
		case delta > 0:
			successColor.Fprintf(w, "Up %d points from your previous score of %d\n", delta, *r.PreviousScore)
		case delta < 0:
			errorColor.Fprintf(w, "Down %d points from your previous score of %d\n", -delta, *r.PreviousScore)
		default:
			fmt.Fprintf(w, "Unchanged from your previous score of %d\n", *r.PreviousScore)
		}
	}

	fmt.Fprintf(w, "\n%s\n", r.Summary)

	titleColor.Fprintln(w, "\nCategory breakdown")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "CATEGORY\tSCORE\t\tBENCHMARK\n")
	for _, c := range r.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", c.Category, c.Score, scoreBar(c.Score), c.BenchmarkScore)
	}
	tw.Flush()
	dimColor.Fprintf(w, "Benchmark: average %s, overall %d\n", r.Benchmark.OrgType, r.Benchmark.OverallScore)

	titleColor.Fprintln(w, "\nRecommendations")
	for _, rec := range r.Recommendations {
		priorityColor(rec.Priority).Fprintf(w, "[%s] ", rec.Priority)
		fmt.Fprintln(w, rec.Description)
		for i, step := range rec.FirstSteps {
			dimColor.Fprintf(w, "    %d. %s\n", i+1, step)
		}
	}
}

func renderHistory(w io.Writer, records []model.AssessmentRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\tORGANIZATION\tSCORE\tLEVEL\n")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Organization.Organization,
			rec.Result.OverallScore,
			service.MaturityLevel(rec.Result.OverallScore).Level,
		)
	}
	tw.Flush()
}
