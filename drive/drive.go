// Package drive stores bike media: per-bike inspection folders and
// contract photo uploads.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// API is the slice of the Drive service the client needs.
type API interface {
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	Upload(ctx context.Context, filename, folderID string, photo io.Reader) error
}

type googleService struct {
	svc *gdrive.Service
}

func (g *googleService) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and '%s' in parents and trashed=false",
		escapeQuery(name), folderMimeType, parentID)
	r, err := g.svc.Files.List().Q(query).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list folders: %w", err)
	}
	if len(r.Files) == 0 {
		return "", nil
	}
	return r.Files[0].Id, nil
}

func (g *googleService) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	f, err := g.svc.Files.Create(&gdrive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return f.Id, nil
}

func (g *googleService) Upload(ctx context.Context, filename, folderID string, photo io.Reader) error {
	_, err := g.svc.Files.Create(&gdrive.File{
		Name:    filename,
		Parents: []string{folderID},
	}).Media(photo, googleapi.ContentType("image/jpeg")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("upload %q: %w", filename, err)
	}
	return nil
}

// Client wraps the Drive backend. Folder-id lookups are memoized: folder
// names are stable per bike and the id never changes once created.
type Client struct {
	api               API
	rootFolderID      string
	contractsFolderID string
	folderIDs         *cache.Cache
}

// NewClient builds a Drive client from service-account JSON.
func NewClient(ctx context.Context, credentialsJSON []byte, rootFolderID, contractsFolderID string) (*Client, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gdrive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Client{
		api:               &googleService{svc: svc},
		rootFolderID:      rootFolderID,
		contractsFolderID: contractsFolderID,
		folderIDs:         cache.New(12*time.Hour, time.Hour),
	}, nil
}

// FolderURL renders the browser link for a folder id.
func FolderURL(id string) string {
	return "https://drive.google.com/drive/folders/" + id
}

func escapeQuery(name string) string {
	name = strings.ReplaceAll(name, `\`, `\\`)
	return strings.ReplaceAll(name, `'`, `\'`)
}

// LookupFolder returns the id of an existing folder under the root, or ""
// when no such folder exists.
func (c *Client) LookupFolder(ctx context.Context, name string) (string, error) {
	if id, ok := c.folderIDs.Get(name); ok {
		return id.(string), nil
	}
	id, err := c.api.FindFolder(ctx, name, c.rootFolderID)
	if err != nil {
		return "", err
	}
	if id != "" {
		c.folderIDs.SetDefault(name, id)
	}
	return id, nil
}

// EnsureFolder returns the id of the named folder under the root,
// creating it when missing.
func (c *Client) EnsureFolder(ctx context.Context, name string) (string, error) {
	if id, ok := c.folderIDs.Get(name); ok {
		return id.(string), nil
	}
	id, err := c.ensure(ctx, name, c.rootFolderID)
	if err != nil {
		return "", err
	}
	c.folderIDs.SetDefault(name, id)
	return id, nil
}

func (c *Client) ensure(ctx context.Context, name, parentID string) (string, error) {
	id, err := c.api.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return c.api.CreateFolder(ctx, name, parentID)
}

// UploadContractPhoto uploads a contract photo into the bike's contract
// folder, creating the folder under the contracts root when folderID is
// empty. Returns the folder id for reuse on subsequent photos.
func (c *Client) UploadContractPhoto(ctx context.Context, photo io.Reader, filename, folderName, folderID string) (string, error) {
	if folderID == "" {
		var err error
		folderID, err = c.ensure(ctx, folderName, c.contractsFolderID)
		if err != nil {
			return "", err
		}
	}
	if err := c.api.Upload(ctx, filename, folderID, photo); err != nil {
		return "", err
	}
	return folderID, nil
}
