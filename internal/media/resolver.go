// Package media provides the client for the external media host that
// stores binary assets and hands back a stable URL. The inventory
// ledger never talks to this package: callers upload first and only
// then pass the returned URL along with a ledger or store operation.
package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	pkgconfig "github.com/adenisov/bookstock/pkg/config"
	"github.com/go-resty/resty/v2"
)

// Resolver accepts raw bytes and returns a retrievable URL.
type Resolver interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// UploadError reports a rejected or failed upload.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upload failed: %s", e.Message)
}

// uploadResponse mirrors the media host's successful response.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// apiError mirrors the media host's error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// HTTPResolver is a resty-backed implementation of Resolver.
type HTTPResolver struct {
	httpClient   *resty.Client
	uploadPreset string
	maxBytes     int64
}

// NewHTTPResolver builds a media host client using the provided configuration values.
func NewHTTPResolver(cfg pkgconfig.MediaConfig) *HTTPResolver {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &HTTPResolver{
		httpClient:   restyClient,
		uploadPreset: cfg.UploadPreset,
		maxBytes:     cfg.MaxUploadBytes,
	}
}

var _ Resolver = (*HTTPResolver)(nil)

// Upload sends the bytes as a multipart form and returns the URL the
// host assigned. Size violations are rejected before any network call.
func (r *HTTPResolver) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", &UploadError{Message: "empty file"}
	}
	if int64(len(data)) > r.maxBytes {
		return "", &UploadError{
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", len(data), r.maxBytes),
		}
	}

	result := new(uploadResponse)
	hostErr := new(apiError)

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetMultipartField("file", "upload", contentType, bytes.NewReader(data)).
		SetMultipartFormData(map[string]string{"upload_preset": r.uploadPreset}).
		SetResult(result).
		SetError(hostErr).
		Post("/upload")
	if err != nil {
		return "", &UploadError{Message: err.Error()}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := hostErr.Error.Message
		if message == "" {
			message = resp.Status()
		}
		return "", &UploadError{StatusCode: resp.StatusCode(), Message: message}
	}
	if result.SecureURL == "" {
		return "", &UploadError{Message: "media host returned no URL"}
	}
	return result.SecureURL, nil
}
