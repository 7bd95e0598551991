package photo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
)

// ErrNotFound is returned when no photo matches the requested id.
var ErrNotFound = errors.New("photo not found")

const photoColumns = `id, name, story, category, image_url, thumbnail_url, camera, lens, settings, location, featured, created_at, updated_at`

// Repository persists photos in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Count returns how many photos match the category filter ("" counts all).
func (r *Repository) Count(ctx context.Context, category string) (int, error) {
	query := `SELECT COUNT(*) FROM photos`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// List returns one page of photos, newest first. category "" means all.
func (r *Repository) List(ctx context.Context, category string, limit, offset int) ([]Photo, error) {
	if limit <= 0 {
		limit = 9
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + photoColumns + ` FROM photos`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// All returns every photo, newest first.
func (r *Repository) All(ctx context.Context) ([]Photo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// Featured returns all photos flagged for the featured section, newest first.
func (r *Repository) Featured(ctx context.Context) ([]Photo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE featured = TRUE
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// Categories returns the distinct non-empty categories in use, sorted.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM photos
		WHERE category <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Get returns a single photo by id.
func (r *Repository) Get(ctx context.Context, id int64) (Photo, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, ErrNotFound
	}
	return p, err
}

// SameCategory returns up to limit photos sharing the category, excluding
// the given id. These are the candidates for the relatedness scorer.
func (r *Repository) SameCategory(ctx context.Context, category string, excludeID int64, limit int) ([]Photo, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE category = $1 AND id <> $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// Insert writes a new photo and returns it with backend-assigned fields set.
func (r *Repository) Insert(ctx context.Context, p Photo) (Photo, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO photos (name, story, category, image_url, thumbnail_url, camera, lens, settings, location, featured)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Story, p.Category, p.ImageURL, p.ThumbnailURL, p.Camera, p.Lens, p.Settings, p.Location, p.Featured)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Photo{}, err
	}
	return p, nil
}

// UpdateDetails changes the editable text fields of a photo.
func (r *Repository) UpdateDetails(ctx context.Context, id int64, name, story, category string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE photos
		SET name = $2, story = $3, category = $4, updated_at = NOW()
		WHERE id = $1
	`, id, name, story, category)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a photo row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row scanner) (Photo, error) {
	var p Photo
	err := row.Scan(&p.ID, &p.Name, &p.Story, &p.Category, &p.ImageURL, &p.ThumbnailURL,
		&p.Camera, &p.Lens, &p.Settings, &p.Location, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanPhotos(rows *sql.Rows) ([]Photo, error) {
	var res []Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func itoa(i int) string { return strconv.Itoa(i) }
