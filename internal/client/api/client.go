// Package api is a small HTTP client for the orgdrive REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/server/models"
)

// UploadTicket is the server's answer to an upload URL request.
type UploadTicket struct {
	ObjectID  string    `json:"objectId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateFileRequest registers an uploaded object as a file.
type CreateFileRequest struct {
	Name   string          `json:"name"`
	FileID string          `json:"fileId"`
	OrgID  string          `json:"orgId"`
	Type   models.FileType `json:"type"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type favoriteResponse struct {
	Favorited bool `json:"favorited"`
}

// Client talks to one orgdrive server. The zero value is not usable; use New.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New returns a client for baseURL. An empty token makes every call anonymous.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token used for subsequent calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Authenticated() bool {
	return c.token != ""
}

func (c *Client) GenerateUploadURL(ctx context.Context) (*UploadTicket, error) {
	var ticket UploadTicket
	if err := c.do(ctx, http.MethodPost, "/api/v1/uploads", nil, http.StatusOK, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Upload PUTs data to a presigned URL obtained from GenerateUploadURL.
func (c *Client) Upload(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload failed: %s", resp.Status)
	}
	return nil
}

func (c *Client) CreateFile(ctx context.Context, in CreateFileRequest) (*models.File, error) {
	var f models.File
	if err := c.do(ctx, http.MethodPost, "/api/v1/files", in, http.StatusCreated, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFiles lists an organization's files. An empty query means no filter.
func (c *Client) GetFiles(ctx context.Context, orgID, query string, favorites bool) ([]*models.File, error) {
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	if favorites {
		q.Set("favorites", strconv.FormatBool(true))
	}

	path := "/api/v1/orgs/" + url.PathEscape(orgID) + "/files"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	files := []*models.File{}
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) GetFilesWithURLs(ctx context.Context, orgID string) ([]*models.FileWithURL, error) {
	files := []*models.FileWithURL{}
	path := "/api/v1/orgs/" + url.PathEscape(orgID) + "/files/urls"
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/files/"+url.PathEscape(fileID), nil, http.StatusNoContent, nil)
}

// ToggleFavorite flips the favorite mark and reports the new state.
func (c *Client) ToggleFavorite(ctx context.Context, fileID string) (bool, error) {
	var resp favoriteResponse
	path := "/api/v1/files/" + url.PathEscape(fileID) + "/favorite"
	if err := c.do(ctx, http.MethodPost, path, nil, http.StatusOK, &resp); err != nil {
		return false, err
	}
	return resp.Favorited, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns an error response back into the matching sentinel, so
// callers can use errors.Is the same way the server does.
func decodeError(resp *http.Response) error {
	var e errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
	msg := e.Error
	if msg == "" {
		msg = resp.Status
	}

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		base = common.ErrAuthenticationRequired
	case http.StatusForbidden:
		base = common.ErrAuthorizationDenied
	case http.StatusBadRequest:
		base = common.ErrValidation
	case http.StatusNotFound:
		base = common.ErrorNotFound
	case http.StatusConflict:
		base = common.ErrAlreadyExists
	case http.StatusTooManyRequests:
		base = common.ErrRateLimited
	default:
		return fmt.Errorf("%w: %s", common.ErrorInternal, msg)
	}

	if msg == base.Error() {
		return base
	}
	return fmt.Errorf("%w: %s", base, msg)
}

// IsUnavailable reports whether err looks like a transport failure rather
// than a server answer.
func IsUnavailable(err error) bool {
	var ue *url.Error
	return errors.As(err, &ue)
}
