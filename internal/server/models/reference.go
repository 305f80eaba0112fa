package models

import "time"

// Tag labels are unique per type, case-insensitively.
type Tag struct {
	ID        string
	Label     string
	Color     string
	Type      TagType
	CreatedAt time.Time
}

type Status struct {
	ID        string
	Name      string
	Color     string
	CreatedBy string
	CreatedAt time.Time
}
