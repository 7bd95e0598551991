package photo

import (
	"context"
	"errors"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"portfolio/internal/queue"
)

// ErrMissingFields is returned when a required field is empty. It is checked
// before any storage or database call is made.
var ErrMissingFields = errors.New("name, story, category and image are required")

// Repo is the persistence surface the service needs.
type Repo interface {
	Count(ctx context.Context, category string) (int, error)
	List(ctx context.Context, category string, limit, offset int) ([]Photo, error)
	All(ctx context.Context) ([]Photo, error)
	Featured(ctx context.Context) ([]Photo, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (Photo, error)
	SameCategory(ctx context.Context, category string, excludeID int64, limit int) ([]Photo, error)
	Insert(ctx context.Context, p Photo) (Photo, error)
	UpdateDetails(ctx context.Context, id int64, name, story, category string) error
	Delete(ctx context.Context, id int64) error
}

// ObjectStore uploads image binaries to the hosted bucket.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	PathFromURL(publicURL string) (string, bool)
}

// Publisher enqueues storage-cleanup work.
type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// Service coordinates gallery reads and admin writes.
type Service struct {
	repo          Repo
	store         ObjectStore
	cleanup       Publisher
	pageSize      int
	candidateSize int
}

// NewService creates a service. store and cleanup may be nil when the hosted
// backend is not configured; uploads then fail cleanly.
func NewService(repo Repo, store ObjectStore, cleanup Publisher, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 9
	}
	return &Service{repo: repo, store: store, cleanup: cleanup, pageSize: pageSize, candidateSize: 10}
}

// ListPage returns one gallery page. category "" means all categories; the
// page number is clamped to 1 and an out-of-range page yields an empty slice.
func (s *Service) ListPage(ctx context.Context, category string, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.repo.Count(ctx, category)
	if err != nil {
		return Page{}, err
	}
	photos, err := s.repo.List(ctx, category, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return Page{}, err
	}
	if photos == nil {
		photos = []Photo{}
	}
	return Page{
		Photos:     photos,
		Total:      total,
		Page:       page,
		PerPage:    s.pageSize,
		TotalPages: TotalPages(total, s.pageSize),
	}, nil
}

// All returns every photo, newest first, for the dashboard and the sitemap.
func (s *Service) All(ctx context.Context) ([]Photo, error) {
	return s.repo.All(ctx)
}

// Featured returns the photos flagged for prominent display.
func (s *Service) Featured(ctx context.Context) ([]Photo, error) {
	return s.repo.Featured(ctx)
}

// Categories returns the distinct categories currently in use.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Detail returns a photo and up to three related photos from the same
// category. A failure while loading candidates only suppresses the related
// section, it does not fail the detail view.
func (s *Service) Detail(ctx context.Context, id int64) (Photo, []Photo, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Photo{}, nil, err
	}
	candidates, err := s.repo.SameCategory(ctx, p.Category, p.ID, s.candidateSize)
	if err != nil {
		log.Printf("related candidates for photo %d failed: %v", id, err)
		return p, nil, nil
	}
	return p, Related(p, candidates), nil
}

// CreateInput carries a new photo and its image file.
type CreateInput struct {
	Name        string
	Story       string
	Category    string
	Location    string
	Featured    bool
	FileName    string
	Data        []byte
	ContentType string
}

// Create validates the input, uploads the image, then inserts the metadata
// row. An upload failure aborts before anything is written. If the insert
// fails after a successful upload, removal of the uploaded object is
// enqueued so no orphan is left behind.
func (s *Service) Create(ctx context.Context, in CreateInput) (Photo, error) {
	if in.Name == "" || in.Story == "" || in.Category == "" || len(in.Data) == 0 {
		return Photo{}, ErrMissingFields
	}
	if s.store == nil {
		return Photo{}, errors.New("image storage not configured")
	}

	objectPath := "photos/" + uuid.NewString() + objectExt(in.FileName, in.ContentType)
	publicURL, err := s.store.Upload(ctx, objectPath, in.Data, in.ContentType)
	if err != nil {
		return Photo{}, err
	}

	p := Photo{
		Name:     in.Name,
		Story:    in.Story,
		Category: in.Category,
		ImageURL: publicURL,
		Featured: in.Featured,
	}
	if in.Location != "" {
		p.Location = &in.Location
	}
	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		s.enqueueCleanup(ctx, objectPath)
		return Photo{}, err
	}
	return created, nil
}

// UpdateDetails validates and applies the editable text fields.
func (s *Service) UpdateDetails(ctx context.Context, id int64, name, story, category string) error {
	if name == "" || story == "" || category == "" {
		return ErrMissingFields
	}
	return s.repo.UpdateDetails(ctx, id, name, story, category)
}

// Delete removes the photo row, then enqueues best-effort removal of the
// stored objects. Cleanup problems never undo the row deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	var paths []string
	if s.store != nil {
		if objectPath, ok := s.store.PathFromURL(p.ImageURL); ok {
			paths = append(paths, objectPath)
		}
		if p.ThumbnailURL != nil {
			if objectPath, ok := s.store.PathFromURL(*p.ThumbnailURL); ok {
				paths = append(paths, objectPath)
			}
		}
	}
	if len(paths) > 0 {
		s.enqueueCleanup(ctx, paths...)
	}
	return nil
}

// objectExt picks the object-name extension from the uploaded file name,
// falling back to the declared content type when the name carries none.
func objectExt(fileName, contentType string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/avif":
		return ".avif"
	}
	return ""
}

func (s *Service) enqueueCleanup(ctx context.Context, paths ...string) {
	if s.cleanup == nil {
		return
	}
	if err := s.cleanup.Publish(ctx, queue.NewCleanup(paths...)); err != nil {
		log.Printf("cleanup enqueue failed for %v: %v", paths, err)
	}
}
