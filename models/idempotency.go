package models

import "time"

// IdempotencyKey remembers the response to a mutating request so a client
// retrying with the same Idempotency-Key gets the same answer. Payments are
// the main reason it exists: a retried POST must not post money twice.
type IdempotencyKey struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Key         string `json:"key" gorm:"size:128;uniqueIndex"`
	RequestHash string `json:"request_hash" gorm:"size:64"`
	Method      string `json:"method" gorm:"size:10"`
	Path        string `json:"path" gorm:"size:255"`
	// ResponseStatus stays 0 while the first request is in flight.
	ResponseStatus int        `json:"response_status"`
	ContentType    string     `json:"content_type" gorm:"size:100"`
	ResponseBody   []byte     `json:"-" gorm:"type:bytea"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"index"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// Expired reports whether the key may be reused for a new request.
func (k IdempotencyKey) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}
