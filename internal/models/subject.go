package models

import "time"

// Subject is a pure catalog entity.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CoreSubjectCodes identifies the "core" subjects used by the objective
// compiler's morning-core term and the quality scorer's pedagogical-timing
// rubric (spec.md §4.5, §4.8): deutsch, mathematik, sachunterricht.
var CoreSubjectCodes = map[string]bool{
	"DE": true,
	"MA": true,
	"SU": true,
}

// SportSubjectCode identifies the subject used by the afternoon-sport term.
const SportSubjectCode = "SP"

// IsCore reports whether this subject counts as a morning-core subject.
func (s Subject) IsCore() bool {
	return CoreSubjectCodes[s.Code]
}

// IsSport reports whether this subject is the sport subject.
func (s Subject) IsSport() bool {
	return s.Code == SportSubjectCode
}
