package classify

import (
	"fmt"
	"io"
)

// Item is one classified pull request.
type Item struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Quadrant Quadrant `json:"quadrant"`
}

// Report is the result of classifying one batch.
type Report struct {
	Items        []Item       `json:"items"`
	Counts       Counts       `json:"counts"`
	Distribution Distribution `json:"distribution"`
}

// Analyze resets c, classifies prs as one batch and returns the report.
func Analyze(c *Classifier, prs []PullRequest) Report {
	c.Reset()

	items := make([]Item, 0, len(prs))
	for _, pr := range prs {
		items = append(items, Item{ID: pr.ID, Title: pr.Title, Quadrant: c.Classify(pr)})
	}

	return Report{
		Items:        items,
		Counts:       c.Counts(),
		Distribution: c.Distribution(),
	}
}

// Render writes the report as a plain-text table.
func (r Report) Render(w io.Writer) error {
	for _, it := range r.Items {
		if _, err := fmt.Fprintf(w, "#%-6d %-12s %s\n", it.ID, it.Quadrant, it.Title); err != nil {
			return err
		}
	}
	if len(r.Items) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%-12s %5s %8s\n", "quadrant", "count", "percent"); err != nil {
		return err
	}
	for _, q := range Quadrants {
		if _, err := fmt.Fprintf(w, "%-12s %5d %7.1f%%\n", q, r.Counts.Of(q), r.Distribution.Of(q)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%-12s %5d\n", "total", r.Counts.Total())
	return err
}
