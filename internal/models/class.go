package models

import "time"

// Class represents a Grundschule class/section.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	Grade     int       `db:"grade" json:"grade"`
	Size      int       `db:"size" json:"size"`
	HomeRoom  *string   `db:"home_room" json:"home_room,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
