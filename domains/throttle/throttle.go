// Package throttle decides whether a repository sync may run now.
//
// The decision depends on the trigger reason (which selects a base window),
// on whether the repository already has a complete baseline dataset, and on
// the time elapsed since the last completed sync for the same
// repository and reason.
package throttle

import (
	"fmt"
	"maps"
)

// BootstrapHours is the grace period, in hours, during which a repository
// without a complete baseline is always allowed to sync. Five minutes.
const BootstrapHours = 0.083

// DefaultHours is the window used for reasons missing from the table.
const DefaultHours = 0.5

// Windows maps a trigger reason to its base throttle window in hours.
type Windows map[string]float64

// DefaultWindows returns the built-in window table.
func DefaultWindows() Windows {
	return Windows{
		"manual":      0.083,
		"auto-fix":    0.25,
		"scheduled":   2,
		"pr-activity": 1,
	}
}

// State is derived at decision time and never persisted.
type State struct {
	HoursSinceLastSync float64
	HasCompleteData    bool
}

// Decision is the result of a throttle check. A deny is a normal outcome.
type Decision struct {
	Allowed        bool
	Bootstrap      bool
	BaseHours      float64
	EffectiveHours float64
}

func (d Decision) String() string {
	switch {
	case d.Bootstrap:
		return "allowed (bootstrap)"
	case d.Allowed:
		return fmt.Sprintf("allowed (window %.3fh)", d.EffectiveHours)
	default:
		return fmt.Sprintf("throttled (window %.3fh)", d.EffectiveHours)
	}
}

// Policy holds the reason table. The zero value uses DefaultWindows.
type Policy struct {
	windows      Windows
	defaultHours float64
}

// NewPolicy builds a policy from a reason table and a fallback window.
// A nil table means DefaultWindows, a non-positive fallback means DefaultHours.
func NewPolicy(windows Windows, defaultHours float64) *Policy {
	if windows == nil {
		windows = DefaultWindows()
	}
	if defaultHours <= 0 {
		defaultHours = DefaultHours
	}
	return &Policy{windows: maps.Clone(windows), defaultHours: defaultHours}
}

// BaseHours returns the window for reason, falling back to the default for
// unknown reasons.
func (p *Policy) BaseHours(reason string) float64 {
	windows, fallback := p.windows, p.defaultHours
	if windows == nil {
		windows, fallback = DefaultWindows(), DefaultHours
	}
	if h, ok := windows[reason]; ok {
		return h
	}
	return fallback
}

// ShouldAllow decides for a reason looked up in the table.
func (p *Policy) ShouldAllow(hoursSinceLastSync float64, reason string, hasCompleteData bool) Decision {
	return AllowWithBase(hoursSinceLastSync, p.BaseHours(reason), hasCompleteData)
}

// Check is ShouldAllow over a derived State.
func (p *Policy) Check(reason string, s State) Decision {
	return p.ShouldAllow(s.HoursSinceLastSync, reason, s.HasCompleteData)
}

// EffectiveHours tightens the window to at most BootstrapHours when the
// repository lacks a complete baseline.
func EffectiveHours(hasCompleteData bool, base float64) float64 {
	if hasCompleteData {
		return base
	}
	return min(base, BootstrapHours)
}

// AllowWithBase applies the decision rule to an explicit base window.
func AllowWithBase(hoursSinceLastSync, base float64, hasCompleteData bool) Decision {
	d := Decision{
		BaseHours:      base,
		EffectiveHours: EffectiveHours(hasCompleteData, base),
	}
	if !hasCompleteData && hoursSinceLastSync < BootstrapHours {
		d.Allowed = true
		d.Bootstrap = true
		return d
	}
	d.Allowed = hoursSinceLastSync >= d.EffectiveHours
	return d
}
