package photo

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/queue"
)

type fakeRepo struct {
	photos      []Photo
	insertCalls int
	insertErr   error
	deleteCalls int
	deleteErr   error
	updateCalls int
}

func (f *fakeRepo) Count(ctx context.Context, category string) (int, error) {
	n := 0
	for _, p := range f.photos {
		if category == "" || p.Category == category {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) List(ctx context.Context, category string, limit, offset int) ([]Photo, error) {
	var matched []Photo
	for _, p := range f.photos {
		if category == "" || p.Category == category {
			matched = append(matched, p)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeRepo) All(ctx context.Context) ([]Photo, error) { return f.photos, nil }

func (f *fakeRepo) Featured(ctx context.Context) ([]Photo, error) {
	var out []Photo
	for _, p := range f.photos {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) Categories(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeRepo) Get(ctx context.Context, id int64) (Photo, error) {
	for _, p := range f.photos {
		if p.ID == id {
			return p, nil
		}
	}
	return Photo{}, ErrNotFound
}

func (f *fakeRepo) SameCategory(ctx context.Context, category string, excludeID int64, limit int) ([]Photo, error) {
	var out []Photo
	for _, p := range f.photos {
		if p.Category == category && p.ID != excludeID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) Insert(ctx context.Context, p Photo) (Photo, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return Photo{}, f.insertErr
	}
	p.ID = int64(len(f.photos) + 1)
	f.photos = append(f.photos, p)
	return p, nil
}

func (f *fakeRepo) UpdateDetails(ctx context.Context, id int64, name, story, category string) error {
	f.updateCalls++
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.deleteCalls++
	return f.deleteErr
}

type fakeStore struct {
	uploadCalls int
	uploadErr   error
	lastPath    string
}

func (f *fakeStore) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	f.uploadCalls++
	f.lastPath = objectPath
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "https://cdn.example/storage/v1/object/public/photos/" + objectPath, nil
}

func (f *fakeStore) PathFromURL(publicURL string) (string, bool) {
	const prefix = "https://cdn.example/storage/v1/object/public/photos/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}

type fakeQueue struct {
	published  []queue.Message
	publishErr error
}

func (f *fakeQueue) Publish(ctx context.Context, msg queue.Message) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}

func validInput() CreateInput {
	return CreateInput{
		Name:        "Misty Lake Sunrise",
		Story:       "calm water reflecting golden light",
		Category:    "landscape",
		FileName:    "sunrise.JPG",
		Data:        []byte("image-bytes"),
		ContentType: "image/jpeg",
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, perPage, want int
	}{
		{0, 9, 0},
		{1, 9, 1},
		{9, 9, 1},
		{10, 9, 2},
		{27, 9, 3},
		{28, 9, 4},
		{5, 0, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.perPage), "total=%d perPage=%d", tc.total, tc.perPage)
	}
}

func TestListPageBoundsAndTotals(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 20; i++ {
		repo.photos = append(repo.photos, Photo{ID: int64(i + 1), Category: "landscape"})
	}
	svc := NewService(repo, nil, nil, 9)

	page, err := svc.ListPage(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Len(t, page.Photos, 9)
	assert.Equal(t, 20, page.Total)
	assert.Equal(t, 3, page.TotalPages)

	page, err = svc.ListPage(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Len(t, page.Photos, 2)

	// Out-of-range page yields an empty slice, not an error.
	page, err = svc.ListPage(context.Background(), "", 99)
	require.NoError(t, err)
	assert.Empty(t, page.Photos)

	// Page numbers below 1 clamp to 1.
	page, err = svc.ListPage(context.Background(), "", -5)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Photos, 9)
}

func TestCreateMissingFieldSkipsAllNetworkCalls(t *testing.T) {
	for _, tc := range []struct {
		name string
		mod  func(*CreateInput)
	}{
		{"no name", func(in *CreateInput) { in.Name = "" }},
		{"no story", func(in *CreateInput) { in.Story = "" }},
		{"no category", func(in *CreateInput) { in.Category = "" }},
		{"no file", func(in *CreateInput) { in.Data = nil }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			st := &fakeStore{}
			svc := NewService(repo, st, &fakeQueue{}, 9)

			in := validInput()
			tc.mod(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, ErrMissingFields)
			assert.Zero(t, st.uploadCalls)
			assert.Zero(t, repo.insertCalls)
		})
	}
}

func TestCreateUploadsThenInserts(t *testing.T) {
	repo := &fakeRepo{}
	st := &fakeStore{}
	q := &fakeQueue{}
	svc := NewService(repo, st, q, 9)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, st.uploadCalls)
	assert.Equal(t, 1, repo.insertCalls)
	assert.True(t, strings.HasPrefix(st.lastPath, "photos/"))
	assert.True(t, strings.HasSuffix(st.lastPath, ".jpg"))
	assert.Contains(t, created.ImageURL, st.lastPath)
	assert.Empty(t, q.published)
}

func TestCreateDerivesExtensionFromContentType(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(&fakeRepo{}, st, &fakeQueue{}, 9)

	in := validInput()
	in.FileName = ""
	in.ContentType = "image/png"
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(st.lastPath, ".png"), "got %q", st.lastPath)

	in = validInput()
	in.FileName = ""
	in.ContentType = "application/octet-stream"
	_, err = svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, path.Ext(st.lastPath), "unknown type stays extensionless, got %q", st.lastPath)
}

func TestCreateUploadFailureAbortsBeforeInsert(t *testing.T) {
	repo := &fakeRepo{}
	st := &fakeStore{uploadErr: errors.New("bucket unavailable")}
	svc := NewService(repo, st, &fakeQueue{}, 9)

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.Zero(t, repo.insertCalls)
}

func TestCreateInsertFailureEnqueuesCleanup(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("insert failed")}
	st := &fakeStore{}
	q := &fakeQueue{}
	svc := NewService(repo, st, q, 9)

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
	require.Len(t, q.published, 1)

	cleanup, err := queue.ParseCleanup(q.published[0])
	require.NoError(t, err)
	require.Len(t, cleanup.Paths, 1)
	assert.Equal(t, st.lastPath, cleanup.Paths[0])
}

func TestUpdateDetailsValidatesBeforeRepo(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil, 9)

	err := svc.UpdateDetails(context.Background(), 1, "name", "", "landscape")
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Zero(t, repo.updateCalls)

	require.NoError(t, svc.UpdateDetails(context.Background(), 1, "name", "story", "landscape"))
	assert.Equal(t, 1, repo.updateCalls)
}

func TestDeleteEnqueuesStorageCleanup(t *testing.T) {
	thumb := "https://cdn.example/storage/v1/object/public/photos/thumbnails/t.jpg"
	repo := &fakeRepo{photos: []Photo{{
		ID:           7,
		ImageURL:     "https://cdn.example/storage/v1/object/public/photos/photos/a.jpg",
		ThumbnailURL: &thumb,
	}}}
	q := &fakeQueue{}
	svc := NewService(repo, &fakeStore{}, q, 9)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Equal(t, 1, repo.deleteCalls)
	require.Len(t, q.published, 1)

	cleanup, err := queue.ParseCleanup(q.published[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/a.jpg", "thumbnails/t.jpg"}, cleanup.Paths)
}

func TestDeleteSucceedsWhenCleanupEnqueueFails(t *testing.T) {
	repo := &fakeRepo{photos: []Photo{{
		ID:       7,
		ImageURL: "https://cdn.example/storage/v1/object/public/photos/photos/a.jpg",
	}}}
	q := &fakeQueue{publishErr: errors.New("redis down")}
	svc := NewService(repo, &fakeStore{}, q, 9)

	// The row deletion stands even when storage cleanup cannot be queued.
	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Equal(t, 1, repo.deleteCalls)
}

func TestDeleteSkipsForeignURLs(t *testing.T) {
	repo := &fakeRepo{photos: []Photo{{ID: 7, ImageURL: "https://elsewhere.example/x.jpg"}}}
	q := &fakeQueue{}
	svc := NewService(repo, &fakeStore{}, q, 9)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Empty(t, q.published)
}

func TestDetailReturnsRelatedFromSameCategory(t *testing.T) {
	repo := &fakeRepo{photos: []Photo{
		{ID: 1, Name: "Misty Lake", Story: "calm water", Category: "landscape"},
		{ID: 2, Name: "Foggy Lake", Story: "calm morning water", Category: "landscape"},
		{ID: 3, Name: "Portrait", Story: "studio light", Category: "portrait"},
	}}
	svc := NewService(repo, nil, nil, 9)

	p, related, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	require.Len(t, related, 1)
	assert.Equal(t, int64(2), related[0].ID)
}

func TestDetailNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, nil, 9)
	_, _, err := svc.Detail(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
