package photo

import "time"

// Photo represents a single published photograph and its metadata.
type Photo struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Story        string    `json:"story"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"image_url"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Camera       *string   `json:"camera,omitempty"`
	Lens         *string   `json:"lens,omitempty"`
	Settings     *string   `json:"settings,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// location returns the photo location or "" when unset.
func (p Photo) location() string {
	if p.Location == nil {
		return ""
	}
	return *p.Location
}

// Page is one slice of the gallery plus the numbers the UI needs for
// pagination controls.
type Page struct {
	Photos     []Photo `json:"photos"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
}

// TotalPages computes ceil(total/perPage); zero rows means zero pages.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
