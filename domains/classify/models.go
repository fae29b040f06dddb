package classify

import "time"

// Quadrant is one of four behavioral buckets for a pull request.
type Quadrant string

const (
	Refinement  Quadrant = "refinement"
	NewStuff    Quadrant = "newStuff"
	Refactoring Quadrant = "refactoring"
	Maintenance Quadrant = "maintenance"
)

// Quadrants lists every bucket in report order.
var Quadrants = []Quadrant{NewStuff, Refinement, Refactoring, Maintenance}

// PullRequest is the classifier input.
type PullRequest struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Additions int64      `json:"additions"`
	Deletions int64      `json:"deletions"`
	CreatedAt time.Time  `json:"createdAt"`
	MergedAt  *time.Time `json:"mergedAt,omitempty"`
}

// Counts holds one counter per quadrant.
type Counts struct {
	Refinement  int `json:"refinement"`
	NewStuff    int `json:"newStuff"`
	Refactoring int `json:"refactoring"`
	Maintenance int `json:"maintenance"`
}

// Total returns the number of classified items.
func (c Counts) Total() int {
	return c.Refinement + c.NewStuff + c.Refactoring + c.Maintenance
}

// Of returns the count for q.
func (c Counts) Of(q Quadrant) int {
	switch q {
	case Refinement:
		return c.Refinement
	case NewStuff:
		return c.NewStuff
	case Refactoring:
		return c.Refactoring
	default:
		return c.Maintenance
	}
}

// Distribution is Counts as percentages of the batch total.
type Distribution struct {
	Refinement  float64 `json:"refinement"`
	NewStuff    float64 `json:"newStuff"`
	Refactoring float64 `json:"refactoring"`
	Maintenance float64 `json:"maintenance"`
}

// Of returns the percentage for q.
func (d Distribution) Of(q Quadrant) float64 {
	switch q {
	case Refinement:
		return d.Refinement
	case NewStuff:
		return d.NewStuff
	case Refactoring:
		return d.Refactoring
	default:
		return d.Maintenance
	}
}

// Thresholds are the tunable cut points.
type Thresholds struct {
	// SmallChangeLines: changes touching fewer lines are maintenance.
	SmallChangeLines int64
	// DominanceRatio: one side dominates when it is at least this many
	// times the other.
	DominanceRatio float64
}

// DefaultThresholds returns the built-in cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{SmallChangeLines: 50, DominanceRatio: 2}
}
