package repository

import "time"

// Preference is one stored key/value setting.
type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
