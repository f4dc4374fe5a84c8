package ledger

import "time"

// Status represents the lifecycle of a binding run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusBinding   Status = "binding"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusBinding,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Run represents one book binding attempt persisted in SQLite.
type Run struct {
	ID           int64
	RunID        string
	SourceDir    string
	OutputPath   string
	BookTitle    string
	Status       Status
	TrackCount   int
	ChapterCount int
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
