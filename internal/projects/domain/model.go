package domain

import "time"

// Project is one portfolio entry. TechStack keeps the casing it was typed with;
// matching against it is case-insensitive.
type Project struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TechStack    []string  `json:"tech_stack"`
	ImageURL     string    `json:"image_url,omitempty"`
	DownloadLink string    `json:"download_link,omitempty"`
	LiveLink     string    `json:"live_link,omitempty"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectInput carries the fields accepted when creating a project.
type ProjectInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=5000"`
	TechStack    []string `json:"tech_stack" validate:"max=50,dive,max=64"`
	ImageURL     string   `json:"image_url" validate:"omitempty,url"`
	DownloadLink string   `json:"download_link" validate:"omitempty,url"`
	LiveLink     string   `json:"live_link" validate:"omitempty,url"`
	Featured     bool     `json:"featured"`
}

// ProjectPatch is a partial update; nil fields are left untouched.
type ProjectPatch struct {
	Title        *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	TechStack    *[]string `json:"tech_stack,omitempty" validate:"omitempty,max=50,dive,max=64"`
	ImageURL     *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	DownloadLink *string   `json:"download_link,omitempty" validate:"omitempty,url"`
	LiveLink     *string   `json:"live_link,omitempty" validate:"omitempty,url"`
	Featured     *bool     `json:"featured,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.TechStack == nil &&
		p.ImageURL == nil && p.DownloadLink == nil && p.LiveLink == nil && p.Featured == nil
}

// Screenshot is an extra image attached to a project, shown in display order.
type Screenshot struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	ImageURL     string    `json:"image_url"`
	Caption      string    `json:"caption,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats summarises an owner's portfolio for the dashboard.
type Stats struct {
	TotalProjects    int `json:"total_projects"`
	Technologies     int `json:"technologies"`
	FeaturedProjects int `json:"featured_projects"`
}
