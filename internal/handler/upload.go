package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/staybook/internal/storage"
)

const (
	// MaxPhotosPerUpload caps the number of files in one POST /upload.
	MaxPhotosPerUpload = 50
	uploadParallelism  = 4
)

// UploadHandler stores listing photos in the blob store and hands the
// generated keys back to the client.  Photos are uploaded before the
// listing that references them is saved.
type UploadHandler struct {
	Blobs    storage.Store
	Client   *http.Client // used for upload-by-link; carries FETCH_TIMEOUT
	MaxBytes int64        // per-file limit
	Timeout  time.Duration
	Log      *slog.Logger
}

// NewUploadHandler builds an UploadHandler.  Unless allowPrivate is set,
// upload-by-link refuses to connect to loopback, private, link-local and
// other non-public addresses.
func NewUploadHandler(blobs storage.Store, fetchTimeout, timeout time.Duration, maxBytes int64, allowPrivate bool, log *slog.Logger) *UploadHandler {
	if blobs == nil {
		panic("nil blob store passed to NewUploadHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UploadHandler{
		Blobs:    blobs,
		Client:   fetchClient(fetchTimeout, allowPrivate),
		MaxBytes: maxBytes,
		Timeout:  timeout,
		Log:      log,
	}
}

type linkReq struct {
	Link string `json:"link"`
}

// UploadByLink handles POST /upload-by-link: it downloads the image at
// link, stores it under a fresh key and returns the key as a JSON string.
func (h *UploadHandler) UploadByLink(c echo.Context) error {
	var req linkReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	u, err := url.Parse(strings.TrimSpace(req.Link))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "link must be an http(s) URL"})
	}

	ctx := c.Request().Context()
	data, contentType, err := h.fetch(ctx, u.String())
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": err.Error()})
		}
		if errors.Is(err, errBlockedAddress) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "link must point at a public address"})
		}
		h.Log.WarnContext(ctx, "image download failed", "link", u.Redacted(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	key, err := storage.NewKey()
	if err != nil {
		return respondError(c, h.Log, err)
	}
	pctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()
	if err := h.Blobs.Put(pctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, key)
}

var errTooLarge = errors.New("image exceeds the upload size limit")

// fetch downloads link, enforcing MaxBytes.  The content type comes from
// the response header, or is sniffed when the server sends none.
func (h *UploadHandler) fetch(ctx context.Context, link string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("download image: remote answered %s", resp.Status)
	}
	if resp.ContentLength > h.MaxBytes {
		return nil, "", errTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > h.MaxBytes {
		return nil, "", errTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Upload handles multipart POST /upload.  Every file in the "photos"
// field is stored under its own key and the keys are returned in input
// order.  If any put fails, the keys already written are removed again.
func (h *UploadHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "expected multipart form")
	}
	files := form.File["photos"]
	switch {
	case len(files) == 0:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no photos in request"})
	case len(files) > MaxPhotosPerUpload:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": fmt.Sprintf("at most %d photos per upload", MaxPhotosPerUpload)})
	}
	for _, fh := range files {
		if fh.Size > h.MaxBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": fmt.Sprintf("%s exceeds the upload size limit", fh.Filename)})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	keys := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallelism)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			key, err := h.putFile(gctx, fh)
			if err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.discard(ctx, keys)
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, keys)
}

func (h *UploadHandler) putFile(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	key, err := storage.NewKey()
	if err != nil {
		return "", err
	}
	if err := h.Blobs.Put(ctx, key, f, fh.Size, partContentType(fh)); err != nil {
		return "", err
	}
	return key, nil
}

// discard removes keys written by a failed upload.
func (h *UploadHandler) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := h.Blobs.Delete(ctx, k); err != nil {
			h.Log.WarnContext(ctx, "could not remove partial upload", "key", k, "error", err)
		}
	}
}

// partContentType prefers the part's own header and falls back to the
// file extension.
func partContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); byExt != "" {
		return byExt
	}
	if ct != "" {
		return ct
	}
	return "application/octet-stream"
}
