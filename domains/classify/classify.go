// Package classify buckets pull requests into contribution quadrants by the
// size and direction of their change.
//
// A batch is: Reset, Classify each item, then read Counts or Distribution.
// Counts accumulate until Reset is called.
package classify

import (
	"sync"

	"github.com/gomantics/contribsync/config"
)

type Classifier struct {
	mu         sync.Mutex
	thresholds Thresholds
	counts     Counts
}

// New returns a classifier with the given thresholds. Invalid values fall
// back to the defaults.
func New(t Thresholds) *Classifier {
	d := DefaultThresholds()
	if t.SmallChangeLines < 0 {
		t.SmallChangeLines = d.SmallChangeLines
	}
	if t.DominanceRatio < 1 {
		t.DominanceRatio = d.DominanceRatio
	}
	return &Classifier{thresholds: t}
}

// FromConfig returns a classifier using the configured thresholds.
func FromConfig() *Classifier {
	return New(Thresholds{
		SmallChangeLines: config.Classifier.SmallChangeLines(),
		DominanceRatio:   config.Classifier.DominanceRatio(),
	})
}

// Quadrant assigns pr to exactly one quadrant without touching the counts.
func (t Thresholds) Quadrant(pr PullRequest) Quadrant {
	adds := float64(max(pr.Additions, 0))
	dels := float64(max(pr.Deletions, 0))

	switch {
	case adds+dels < float64(t.SmallChangeLines):
		return Maintenance
	case adds >= t.DominanceRatio*dels:
		return NewStuff
	case dels >= t.DominanceRatio*adds:
		return Refinement
	default:
		return Refactoring
	}
}

// Classify assigns pr to a quadrant and counts it.
func (c *Classifier) Classify(pr PullRequest) Quadrant {
	q := c.thresholds.Quadrant(pr)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch q {
	case Refinement:
		c.counts.Refinement++
	case NewStuff:
		c.counts.NewStuff++
	case Refactoring:
		c.counts.Refactoring++
	case Maintenance:
		c.counts.Maintenance++
	}
	return q
}

// Reset zeroes the counts. Call once per independent batch.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = Counts{}
}

func (c *Classifier) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}

// Distribution returns the counts as percentages. An empty batch is all zeros.
func (c *Classifier) Distribution() Distribution {
	counts := c.Counts()
	total := counts.Total()
	if total == 0 {
		return Distribution{}
	}

	pct := func(n int) float64 {
		return float64(n) / float64(total) * 100
	}
	return Distribution{
		Refinement:  pct(counts.Refinement),
		NewStuff:    pct(counts.NewStuff),
		Refactoring: pct(counts.Refactoring),
		Maintenance: pct(counts.Maintenance),
	}
}
