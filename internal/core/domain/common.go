package domain

import "time"

// AuditFields holds the who/when trail embedded in every persisted entity.
// The user references are UUID strings issued by the external identity layer.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
