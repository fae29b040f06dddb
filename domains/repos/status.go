package repos

// Status represents the sync status of a repository as shown on the dashboard
type Status string

const (
	StatusNotFound Status = "not_found"
	StatusPending  Status = "pending"
	StatusSyncing  Status = "syncing"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsActive returns true if a sync for the repo is currently running
func (s Status) IsActive() bool {
	return s == StatusSyncing
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusNotFound, StatusPending, StatusSyncing, StatusReady, StatusError:
		return true
	}
	return false
}
