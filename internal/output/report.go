package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/panbanda/deadmethods/pkg/models"
)

const (
	noUnusedMessage = "No unused methods found!"
	unusedHeader    = "Unused methods found in your definition directories:"
)

// UnusedReport renders a scan result. Findings keep scan order in every format.
type UnusedReport struct {
	Report *models.UnusedReport
}

// NewUnusedReport wraps r for rendering.
func NewUnusedReport(r *models.UnusedReport) *UnusedReport {
	if r == nil {
		r = models.NewUnusedReport()
	}
	return &UnusedReport{Report: r}
}

func (u *UnusedReport) RenderData() any {
	return u.Report
}

func (u *UnusedReport) RenderText(w io.Writer, colored bool) error {
	if u.Report.Empty() {
		if colored {
			_, err := color.New(color.FgGreen).Fprintln(w, noUnusedMessage)
			return err
		}
		_, err := fmt.Fprintln(w, noUnusedMessage)
		return err
	}

	if colored {
		color.New(color.FgRed).Fprintln(w, unusedHeader)
	} else {
		fmt.Fprintln(w, unusedHeader)
	}
	for _, f := range u.Report.Findings {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	return nil
}

func (u *UnusedReport) RenderTable(w io.Writer, colored bool) error {
	if u.Report.Empty() {
		return u.RenderText(w, colored)
	}
	return u.table().RenderText(w, colored)
}

func (u *UnusedReport) RenderMarkdown(w io.Writer) error {
	fmt.Fprintln(w, "# Unused Methods")
	fmt.Fprintln(w)
	if u.Report.Empty() {
		fmt.Fprintln(w, noUnusedMessage)
		return nil
	}
	if err := u.table().RenderMarkdown(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, u.summaryLine())
	return err
}

func (u *UnusedReport) table() *Table {
	rows := make([][]string, len(u.Report.Findings))
	for i, f := range u.Report.Findings {
		rows[i] = []string{f.File, strconv.Itoa(f.Line), f.Name}
	}
	s := u.Report.Summary
	footer := []string{
		fmt.Sprintf("%d files", s.TotalFilesScanned),
		fmt.Sprintf("%d defs", s.TotalDefinitions),
		fmt.Sprintf("%d unused (%.1f%%)", s.TotalUnused, s.UnusedPercentage),
	}
	return NewTable(unusedHeader, []string{"File", "Line", "Method"}, rows, footer, u.Report)
}

func (u *UnusedReport) summaryLine() string {
	s := u.Report.Summary
	return fmt.Sprintf("%d of %d definitions unused (%.1f%%) across %d files.",
		s.TotalUnused, s.TotalDefinitions, s.UnusedPercentage, s.TotalFilesScanned)
}
