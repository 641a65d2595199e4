package models

import "time"

const (
	MinRating         = 1
	MaxRating         = 5
	MaxFeedbackLength = 2000
)

// FeedbackRecord is a user's rating of one task. ID stays empty until the
// backend has persisted it.
type FeedbackRecord struct {
	ID           string
	TaskID       string
	Rating       int
	FeedbackText string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (f FeedbackRecord) Persisted() bool {
	return f.ID != ""
}
