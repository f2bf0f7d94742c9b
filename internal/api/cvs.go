package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
)

// UploadCV sends a PDF as the multipart field "file".
func (c *Client) UploadCV(ctx context.Context, filename string, content []byte) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return UploadResult{}, fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return UploadResult{}, fmt.Errorf("api: build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("api: build upload: %w", err)
	}

	resp, cancel, err := c.send(ctx, http.MethodPost, "/cvs/upload", &buf, mw.FormDataContentType())
	if err != nil {
		return UploadResult{}, err
	}
	defer cancel()
	defer resp.Body.Close()

	var out UploadResult
	if err := decodeJSON(resp.Body, &out); err != nil {
		return UploadResult{}, fmt.Errorf("api: decode POST /cvs/upload: %w", err)
	}
	return out, nil
}

func (c *Client) ListCVs(ctx context.Context) ([]CV, error) {
	var out []CV
	err := c.do(ctx, http.MethodGet, "/cvs/", nil, &out)
	return out, err
}

// DownloadCV fetches the stored file as an opaque blob.
func (c *Client) DownloadCV(ctx context.Context, id string) (Blob, error) {
	path := "/cvs/download/" + url.PathEscape(id)
	resp, cancel, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return Blob{}, err
	}
	defer cancel()
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return Blob{}, fmt.Errorf("api: read %s: %w", path, err)
	}
	if int64(len(data)) > c.maxDownload {
		return Blob{}, fmt.Errorf("api: read %s: %w", path, ErrDownloadTooLarge)
	}

	blob := Blob{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		blob.Filename = params["filename"]
	}
	return blob, nil
}
