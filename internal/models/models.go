package models

import "time"

// ProjectType is the closed set of project categories. Anything else
// coming out of the store or a form is coerced to TypeOther at the
// boundary via NormalizeType.
type ProjectType string

const (
	TypeCleanup  ProjectType = "cleanup"
	TypeWeeds    ProjectType = "weeds"
	TypeGraffiti ProjectType = "graffiti"
	TypeOther    ProjectType = "other"
)

var typeLabels = map[ProjectType]string{
	TypeCleanup:  "Litter Cleanup",
	TypeWeeds:    "Weed Removal",
	TypeGraffiti: "Graffiti Removal",
	TypeOther:    "Other",
}

// NormalizeType maps an arbitrary raw string onto the closed type set.
// Valid values pass through unchanged; everything else becomes "other".
func NormalizeType(raw string) ProjectType {
	t := ProjectType(raw)
	if _, ok := typeLabels[t]; ok {
		return t
	}
	return TypeOther
}

// Label returns the human-readable name for a project type.
func (t ProjectType) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return typeLabels[TypeOther]
}

// AllTypes lists the valid categories in display order.
func AllTypes() []ProjectType {
	return []ProjectType{TypeCleanup, TypeWeeds, TypeGraffiti, TypeOther}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Project struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Type        ProjectType `json:"type"`
	ImageURL    string      `json:"image_url,omitempty"`
	CreatorID   string      `json:"creator_id"`
	Votes       int         `json:"votes"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Vote struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize enforces the closed type set on a record read from the
// store. Runs on every single-record and list read so downstream code
// never observes an invalid category.
func (p *Project) Normalize() {
	p.Type = NormalizeType(string(p.Type))
}

// Stats is the aggregate block shown on the home page.
type Stats struct {
	Projects   int
	Votes      int
	Volunteers int
}
