package jobs

import "time"

// Status represents the lifecycle of a translation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
	StatusSuperseded Status = "superseded"
)

// Record is one translation job as persisted in the store.
type Record struct {
	ID            int64     `json:"id"`
	TranslationID string    `json:"translationId"`
	Generation    uint64    `json:"generation"`
	Label         string    `json:"label"`
	Status        Status    `json:"status"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
