package throttle

import "github.com/gomantics/contribsync/config"

// FromConfig builds a policy from the current configuration. Config reloads
// are picked up by the next call.
func FromConfig() *Policy {
	return NewPolicy(config.Throttle.Windows(), config.Throttle.DefaultHours())
}
