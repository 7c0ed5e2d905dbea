package entity

import "time"

type Issue struct {
	Key             string
	OpenedAt        time.Time
	FirstAssignedAt *time.Time
	Reopened        bool
	LastActivityAt  time.Time
	ClosedAt        *time.Time
}

func (i Issue) IsOpen() bool {
	return i.ClosedAt == nil
}

// CollectedData is the raw input of a single analysis run.
type CollectedData struct {
	PullRequests    []PullRequest
	Issues          []Issue
	BlockerMentions int
}
