package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/kbukum/transcriptkit/errors"
)

// maxErrorBody bounds how much of a failed response is kept in error details.
const maxErrorBody = 512

// Form is a multipart/form-data request carrying one audio upload.
type Form struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// FileName is the name the audio is uploaded under.
	FileName string
	// Audio is the file content.
	Audio []byte
}

// Sidecar is a minimal client for inference engines served over HTTP next
// to the backend. Every sidecar exposes GET /health and one POST endpoint
// taking a multipart audio upload and answering with JSON.
type Sidecar struct {
	engine  string
	baseURL string
	client  *http.Client
}

// NewSidecar creates a client for the named engine at baseURL.
func NewSidecar(engine, baseURL string, timeout time.Duration) *Sidecar {
	return &Sidecar{
		engine:  engine,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the sidecar address.
func (s *Sidecar) BaseURL() string { return s.baseURL }

// Healthy reports whether GET /health answers 200.
func (s *Sidecar) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Post uploads form to path and decodes the JSON answer into out.
// Failures come back as ENGINE_FAILURE or ENGINE_BUSY AppErrors; a
// cancelled context is returned as-is.
func (s *Sidecar) Post(ctx context.Context, path string, form Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return errors.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, body)
	if err != nil {
		return errors.Internal(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.EngineFailure(s.engine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(s.engine, resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.EngineFailure(s.engine, err).WithDetail("reason", "undecodable response")
	}
	return nil
}

// classifyStatus converts a non-200 sidecar answer into an AppError.
// Overload answers are ENGINE_BUSY; client errors are not retryable.
func classifyStatus(engine string, status int, body []byte) *errors.AppError {
	var appErr *errors.AppError
	switch {
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		appErr = errors.EngineBusy(engine, nil)
	case status >= 400 && status < 500:
		appErr = errors.EngineFailure(engine, nil)
		appErr.Retryable = false
	default:
		appErr = errors.EngineFailure(engine, nil)
	}
	appErr.WithDetail("status", status)
	if len(body) > 0 {
		appErr.WithDetail("body", string(body))
	}
	return appErr
}

func (f Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range f.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	name := f.FileName
	if name == "" {
		name = "audio.wav"
	}
	part, err := w.CreateFormFile("audio", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Audio); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
