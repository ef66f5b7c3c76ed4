package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const (
	driveBaseURL  = "https://www.googleapis.com/drive/v3"
	uploadBaseURL = "https://www.googleapis.com/upload/drive/v3"

	folderMimeType = "application/vnd.google-apps.folder"
)

// ErrRemoteUnavailable signals a transport or auth failure talking to the
// remote store. It is not retried here; retry policy belongs to the caller's
// supervisor.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// Store is the narrow remote-store capability Sync depends on. An empty
// parent ID means the store root. Find methods return an empty ID when no
// match exists, and the first match in the store's listing order when more
// than one name collides under a parent.
type Store interface {
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	FindFile(ctx context.Context, name, parentID string) (string, error)
	CreateFile(ctx context.Context, name, parentID string) (string, error)
	WriteContent(ctx context.Context, id string, data []byte) error
	ReadContent(ctx context.Context, id string) ([]byte, error)
}

// Client is an authenticated Google Drive API client.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new Drive API client using the provided token and config.
func NewClient(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config) *Client {
	ts := cfg.TokenSource(ctx, tok)
	return &Client{
		httpClient: oauth2.NewClient(ctx, &savingTokenSource{ts: ts}),
	}
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts oauth2.TokenSource
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(tok)
	return tok, nil
}

// driveFile is the subset of the Drive file resource used here.
type driveFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// fileListResponse is the files.list response.
type fileListResponse struct {
	Files []driveFile `json:"files"`
}

// do executes the request and returns the response body. Transport errors
// and non-2xx statuses wrap ErrRemoteUnavailable.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: drive API error %d: %s", ErrRemoteUnavailable, resp.StatusCode, string(body))
	}
	return body, nil
}

// findOne runs a files.list query and returns the first match, or "" when
// nothing matches. Duplicate names resolve to whichever the store lists first.
func (c *Client) findOne(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/files?q=%s&fields=%s",
		driveBaseURL,
		url.QueryEscape(query),
		url.QueryEscape("files(id,name)"),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var page fileListResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("%w: decoding drive response: %v", ErrRemoteUnavailable, err)
	}
	if len(page.Files) == 0 {
		return "", nil
	}
	return page.Files[0].ID, nil
}

// create issues a files.create call for the given metadata and returns the
// new file's ID.
func (c *Client) create(ctx context.Context, name, parentID, mimeType string) (string, error) {
	metadata := map[string]any{"name": name}
	if parentID != "" {
		metadata["parents"] = []string{parentID}
	}
	if mimeType != "" {
		metadata["mimeType"] = mimeType
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	endpoint := driveBaseURL + "/files?fields=id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var created driveFile
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: decoding drive response: %v", ErrRemoteUnavailable, err)
	}
	return created.ID, nil
}

// escapeName escapes a name for use inside a single-quoted query term.
func escapeName(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, `\`, `\\`), `'`, `\'`)
}

// FindFolder looks up a folder by name under the given parent ("" = root).
func (c *Client) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		escapeName(name), folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}
	return c.findOne(ctx, query)
}

// CreateFolder creates a folder under the given parent and returns its ID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	return c.create(ctx, name, parentID, folderMimeType)
}

// FindFile looks up a non-folder file by name under the given parent.
func (c *Client) FindFile(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType != '%s' and trashed = false",
		escapeName(name), folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}
	return c.findOne(ctx, query)
}

// CreateFile creates an empty file record under the given parent.
func (c *Client) CreateFile(ctx context.Context, name, parentID string) (string, error) {
	return c.create(ctx, name, parentID, "")
}

// WriteContent replaces the file's content with data in one media upload.
func (c *Client) WriteContent(ctx context.Context, id string, data []byte) error {
	endpoint := fmt.Sprintf("%s/files/%s?uploadType=media", uploadBaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	_, err = c.do(req)
	return err
}

// ReadContent downloads the file's full current content.
func (c *Client) ReadContent(ctx context.Context, id string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/files/%s?alt=media", driveBaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req)
}
