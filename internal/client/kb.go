package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/ppiankov/factview/internal/cache"
	"github.com/ppiankov/factview/internal/model"
)

// UploadFile is one file sent to the knowledge base
type UploadFile struct {
	Name    string
	Content io.Reader
}

// Health calls GET /api/health
func (c *Client) Health(ctx context.Context) (string, error) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "health", "/api/health", &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

// Status returns the knowledge-base status, from cache when fresh
func (c *Client) Status(ctx context.Context) (*model.KBStatus, error) {
	key := cache.StatusKey(c.baseURL)
	if data, ok := c.status.Get(key); ok {
		var st model.KBStatus
		if err := json.Unmarshal(data, &st); err == nil {
			return &st, nil
		}
		_ = c.status.Delete(key)
	}
	return c.RefreshStatus(ctx)
}

// RefreshStatus fetches GET /api/kb/status, bypassing and refilling the cache
func (c *Client) RefreshStatus(ctx context.Context) (*model.KBStatus, error) {
	var st model.KBStatus
	if err := c.getJSON(ctx, "kb status", "/api/kb/status", &st); err != nil {
		return nil, err
	}
	c.storeStatus(&st)
	return &st, nil
}

// List calls GET /api/kb/list
func (c *Client) List(ctx context.Context) ([]model.KBFile, error) {
	var files []model.KBFile
	if err := c.getJSON(ctx, "kb list", "/api/kb/list", &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Upload sends files to POST /api/kb/upload as the multipart field "files".
// The index is not rebuilt; call Rebuild afterwards.
func (c *Client) Upload(ctx context.Context, files []UploadFile) (*model.UploadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", ErrInvalidRequest)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", filepath.Base(f.Name))
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	data, err := c.do(ctx, request{
		op:          "kb upload",
		method:      http.MethodPost,
		path:        "/api/kb/upload",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	var res model.UploadResult
	if err := decode("kb upload", data, &res); err != nil {
		return nil, err
	}
	c.invalidateStatus()
	return &res, nil
}

// Rebuild calls POST /api/kb/rebuild and returns the new status. On failure
// the cached status is left as it was.
func (c *Client) Rebuild(ctx context.Context) (*model.KBStatus, error) {
	var st model.KBStatus
	if err := c.sendJSON(ctx, "kb rebuild", http.MethodPost, "/api/kb/rebuild", nil, &st); err != nil {
		return nil, err
	}
	c.storeStatus(&st)
	return &st, nil
}

// Clear calls DELETE /api/kb/clear
func (c *Client) Clear(ctx context.Context) error {
	if err := c.sendJSON(ctx, "kb clear", http.MethodDelete, "/api/kb/clear", nil, nil); err != nil {
		return err
	}
	c.invalidateStatus()
	return nil
}

func (c *Client) storeStatus(st *model.KBStatus) {
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	_ = c.status.Set(cache.StatusKey(c.baseURL), data, c.statusTTL)
}

func (c *Client) invalidateStatus() {
	_ = c.status.Delete(cache.StatusKey(c.baseURL))
}
