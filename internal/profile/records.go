// Package profile defines the résumé sections shown on a portfolio page.
package profile

import (
	"time"

	"github.com/dataportfolio/portfolio-api/internal/records"
)

type Education struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	School      string    `json:"school" db:"school"`
	Degree      string    `json:"degree" db:"degree"`
	Field       string    `json:"field" db:"field"`
	StartDate   string    `json:"start_date" db:"start_date"`
	EndDate     string    `json:"end_date,omitempty" db:"end_date"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Experience struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Company     string    `json:"company" db:"company"`
	Title       string    `json:"title" db:"title"`
	StartDate   string    `json:"start_date" db:"start_date"`
	EndDate     string    `json:"end_date,omitempty" db:"end_date"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// An empty end_date means the entry is ongoing.
var EducationSchema = records.Schema{
	Table: "educations",
	Fields: []records.Field{
		{Name: "school", Kind: records.Text, Required: true, MaxLen: 200},
		{Name: "degree", Kind: records.Text, Required: true, MaxLen: 200},
		{Name: "field", Kind: records.Text, Required: true, MaxLen: 200},
		{Name: "start_date", Kind: records.Date, Required: true},
		{Name: "end_date", Kind: records.Date},
		{Name: "description", Kind: records.Text, MaxLen: 5000},
	},
	OrderBy: "start_date DESC, created_at DESC",
	Range:   [2]string{"start_date", "end_date"},
}

var ExperienceSchema = records.Schema{
	Table: "experiences",
	Fields: []records.Field{
		{Name: "company", Kind: records.Text, Required: true, MaxLen: 200},
		{Name: "title", Kind: records.Text, Required: true, MaxLen: 200},
		{Name: "start_date", Kind: records.Date, Required: true},
		{Name: "end_date", Kind: records.Date},
		{Name: "description", Kind: records.Text, MaxLen: 5000},
	},
	OrderBy: "start_date DESC, created_at DESC",
	Range:   [2]string{"start_date", "end_date"},
}

func NewEducationStore(db records.DB) *records.Store[Education] {
	return records.NewStore[Education](db, EducationSchema)
}

func NewExperienceStore(db records.DB) *records.Store[Experience] {
	return records.NewStore[Experience](db, ExperienceSchema)
}
