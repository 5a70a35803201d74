package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/yoockh/videoinsight/internal/utils"
)

// UploadFile runs the two-step resumable upload: an initiation request
// carrying display-name metadata, then the raw bytes against the returned
// upload URL.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, size int64, mimeType, displayName string) (*File, error) {
	const op = "gemini.UploadFile"

	if err := c.ensureKey(op); err != nil {
		return nil, err
	}

	var meta fileUploadMetadata
	meta.File.DisplayName = displayName
	buf, err := encodeJSON(meta)
	if err != nil {
		return nil, utils.E(utils.CodeProvider, op, "failed to encode upload metadata", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/v1beta/files", buf)
	if err != nil {
		return nil, utils.E(utils.CodeProvider, op, "failed to build upload request", err)
	}
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.FormatInt(size, 10))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, utils.E(utils.CodeProvider, op, "gemini upload initiation failed", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, c.decodeAPIError(resp, op)
	}
	uploadURL := resp.Header.Get("X-Goog-Upload-URL")
	resp.Body.Close()
	if uploadURL == "" {
		return nil, utils.E(utils.CodeProvider, op, "gemini did not return an upload url", nil)
	}

	up, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, r)
	if err != nil {
		return nil, utils.E(utils.CodeProvider, op, "failed to build upload request", err)
	}
	up.ContentLength = size
	up.Header.Set("X-Goog-Upload-Offset", "0")
	up.Header.Set("X-Goog-Upload-Command", "upload, finalize")

	var out fileUploadResponse
	if err := c.doJSON(up, op, &out); err != nil {
		return nil, err
	}
	if out.File.Name == "" {
		return nil, utils.E(utils.CodeProvider, op, "gemini upload returned no file handle", nil)
	}
	return &out.File, nil
}

// GetFile fetches the current state of a remote handle by its resource name
// (e.g. "files/abc123").
func (c *Client) GetFile(ctx context.Context, name string) (*File, error) {
	const op = "gemini.GetFile"

	if err := c.ensureKey(op); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/"+name, nil)
	if err != nil {
		return nil, utils.E(utils.CodeProvider, op, "failed to build file request", err)
	}

	var out File
	if err := c.doJSON(req, op, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFile removes a remote handle. The caller decides whether failure
// matters; after a completed analysis it is log-only.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	const op = "gemini.DeleteFile"

	if err := c.ensureKey(op); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1beta/"+name, nil)
	if err != nil {
		return utils.E(utils.CodeProvider, op, "failed to build delete request", err)
	}
	return c.doJSON(req, op, nil)
}

// WaitForActive polls the handle every pollEvery until it turns ACTIVE,
// enters a terminal failure state, or the attempt ceiling is reached. The
// returned errors carry the last observed state.
func (c *Client) WaitForActive(ctx context.Context, f *File) (*File, error) {
	const op = "gemini.WaitForActive"

	if f == nil || f.Name == "" {
		return nil, utils.E(utils.CodeProvider, op, "no file handle to wait on", nil)
	}

	cur := f
	for attempt := 0; ; attempt++ {
		switch cur.State {
		case FileStateActive:
			return cur, nil
		case FileStateProcessing, FileStateUnspecified, "":
		default:
			return nil, utils.E(utils.CodeProcessingFailed, op,
				fmt.Sprintf("video processing failed (last state %s)", cur.State), nil)
		}

		if attempt >= maxPollAttempts {
			return nil, utils.E(utils.CodeProcessingTimeout, op,
				fmt.Sprintf("video processing timed out after %d polls (last state %s)", maxPollAttempts, cur.State), nil)
		}

		select {
		case <-ctx.Done():
			return nil, utils.E(utils.CodeProvider, op, "cancelled while waiting for video processing", ctx.Err())
		case <-time.After(c.pollEvery):
		}

		next, err := c.GetFile(ctx, cur.Name)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}
