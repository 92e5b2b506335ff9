package drive

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	folders map[string]string // "parent/name" -> id
	finds   int
	creates int
	uploads []string
}

func (f *fakeAPI) FindFolder(_ context.Context, name, parentID string) (string, error) {
	f.finds++
	return f.folders[parentID+"/"+name], nil
}

func (f *fakeAPI) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	f.creates++
	id := "created-" + name
	f.folders[parentID+"/"+name] = id
	return id, nil
}

func (f *fakeAPI) Upload(_ context.Context, filename, folderID string, _ io.Reader) error {
	f.uploads = append(f.uploads, folderID+"/"+filename)
	return nil
}

func newTestClient(api API) *Client {
	return &Client{
		api:               api,
		rootFolderID:      "root",
		contractsFolderID: "contracts",
		folderIDs:         cache.New(12*time.Hour, time.Hour),
	}
}

func TestLookupFolderMemoizes(t *testing.T) {
	api := &fakeAPI{folders: map[string]string{"root/Honda Vision A1": "f1"}}
	c := newTestClient(api)
	ctx := context.Background()

	id, err := c.LookupFolder(ctx, "Honda Vision A1")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)

	id, err = c.LookupFolder(ctx, "Honda Vision A1")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)
	assert.Equal(t, 1, api.finds, "second lookup must hit the cache")
}

func TestLookupFolderAbsentNotCached(t *testing.T) {
	api := &fakeAPI{folders: map[string]string{}}
	c := newTestClient(api)
	ctx := context.Background()

	id, err := c.LookupFolder(ctx, "Honda Vision A1")
	require.NoError(t, err)
	assert.Empty(t, id)

	// The folder may appear later (created by EnsureFolder); absence is
	// not memoized.
	api.folders["root/Honda Vision A1"] = "f1"
	id, err = c.LookupFolder(ctx, "Honda Vision A1")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)
	assert.Equal(t, 2, api.finds)
}

func TestEnsureFolderCreatesOnce(t *testing.T) {
	api := &fakeAPI{folders: map[string]string{}}
	c := newTestClient(api)
	ctx := context.Background()

	id, err := c.EnsureFolder(ctx, "Honda Vision A1")
	require.NoError(t, err)
	assert.Equal(t, "created-Honda Vision A1", id)
	assert.Equal(t, 1, api.creates)

	id2, err := c.EnsureFolder(ctx, "Honda Vision A1")
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.Equal(t, 1, api.finds, "cached id must skip the backend")
	assert.Equal(t, 1, api.creates)
}

func TestEnsureFolderReusesExisting(t *testing.T) {
	api := &fakeAPI{folders: map[string]string{"root/Honda Vision A1": "f1"}}
	c := newTestClient(api)

	id, err := c.EnsureFolder(context.Background(), "Honda Vision A1")
	require.NoError(t, err)
	assert.Equal(t, "f1", id)
	assert.Zero(t, api.creates)
}

func TestUploadContractPhoto(t *testing.T) {
	api := &fakeAPI{folders: map[string]string{}}
	c := newTestClient(api)
	ctx := context.Background()
	photo := strings.NewReader("jpeg")

	folderID, err := c.UploadContractPhoto(ctx, photo, "a.jpg", "Honda Vision A1", "")
	require.NoError(t, err)
	assert.Equal(t, "created-Honda Vision A1", folderID)
	assert.Equal(t, []string{"created-Honda Vision A1/a.jpg"}, api.uploads)

	// Subsequent photos reuse the returned folder id without re-ensuring.
	_, err = c.UploadContractPhoto(ctx, photo, "b.jpg", "Honda Vision A1", folderID)
	require.NoError(t, err)
	assert.Equal(t, 1, api.finds)
	assert.Equal(t, 1, api.creates)
	assert.Len(t, api.uploads, 2)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, "Honda Vision 59X1", escapeQuery("Honda Vision 59X1"))
	assert.Equal(t, `O\'Neil`, escapeQuery("O'Neil"))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}

func TestFolderURL(t *testing.T) {
	assert.Equal(t,
		"https://drive.google.com/drive/folders/abc123",
		FolderURL("abc123"))
}
