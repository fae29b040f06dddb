package throttle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHours(t *testing.T) {
	p := NewPolicy(nil, 0)

	tests := []struct {
		reason string
		want   float64
	}{
		{"manual", 0.083},
		{"auto-fix", 0.25},
		{"scheduled", 2},
		{"pr-activity", 1},
		{"automatic", 0.5},
		{"anything-else", 0.5},
		{"", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, p.BaseHours(tt.reason))
		})
	}
}

func TestBaseHours_ZeroPolicy(t *testing.T) {
	var p Policy
	assert.Equal(t, 2.0, p.BaseHours("scheduled"))
	assert.Equal(t, 0.5, p.BaseHours("unknown"))
}

func TestBaseHours_Injected(t *testing.T) {
	p := NewPolicy(Windows{"scheduled": 6}, 1.5)
	assert.Equal(t, 6.0, p.BaseHours("scheduled"))
	assert.Equal(t, 1.5, p.BaseHours("manual"))
}

func TestNewPolicy_CopiesWindows(t *testing.T) {
	w := Windows{"manual": 1}
	p := NewPolicy(w, 0)
	w["manual"] = 9
	assert.Equal(t, 1.0, p.BaseHours("manual"))
}

func TestEffectiveHours(t *testing.T) {
	assert.Equal(t, 2.0, EffectiveHours(true, 2))
	assert.Equal(t, 0.083, EffectiveHours(false, 2))
	assert.Equal(t, 0.05, EffectiveHours(false, 0.05))
}

func TestAllowWithBase(t *testing.T) {
	tests := []struct {
		name      string
		hours     float64
		base      float64
		complete  bool
		allowed   bool
		bootstrap bool
	}{
		{"bootstrap override", 0.01, 2, false, true, true},
		{"inside window", 0.5, 2, true, false, false},
		{"past window", 3, 2, true, true, false},
		{"exactly at window", 2, 2, true, true, false},
		{"bootstrap boundary is strict", 0.083, 2, false, true, false},
		{"incomplete after grace", 0.1, 2, false, true, false},
		{"incomplete small base", 0.06, 0.05, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := AllowWithBase(tt.hours, tt.base, tt.complete)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.bootstrap, d.Bootstrap)
		})
	}
}

func TestShouldAllow_Monotonic(t *testing.T) {
	p := NewPolicy(nil, 0)
	reasons := []string{"manual", "auto-fix", "scheduled", "pr-activity", "automatic", "other"}

	for _, reason := range reasons {
		for _, complete := range []bool{true, false} {
			allowed := false
			for step := 0; step <= 1000; step++ {
				hours := float64(step) * 0.005
				d := p.ShouldAllow(hours, reason, complete)
				if allowed {
					require.True(t, d.Allowed, "reason=%s complete=%v hours=%v", reason, complete, hours)
				}
				allowed = d.Allowed
			}
			assert.True(t, allowed, "reason=%s never allowed", reason)
		}
	}
}

func TestPolicy_Check(t *testing.T) {
	p := NewPolicy(nil, 0)
	d := p.Check("scheduled", State{HoursSinceLastSync: 1, HasCompleteData: true})
	assert.False(t, d.Allowed)
	assert.Equal(t, 2.0, d.EffectiveHours)
	assert.Contains(t, d.String(), "throttled")

	d = p.Check("scheduled", State{HoursSinceLastSync: 0.02})
	assert.True(t, d.Bootstrap)
	assert.Equal(t, "allowed (bootstrap)", d.String())
}

func TestFromConfig(t *testing.T) {
	p := FromConfig()
	assert.Equal(t, 0.083, p.BaseHours("manual"))
	assert.Equal(t, 0.5, p.BaseHours("unknown"))
}
