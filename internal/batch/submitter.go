package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"resumeai/internal/models"
)

// HTTPSubmitter ships a batch to the upload endpoint as one multipart POST.
// All files travel in a single request under the "files" field, mirroring how
// the server reads them back out.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSubmitter(endpoint string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &HTTPSubmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Submit implements Submitter.
func (s *HTTPSubmitter) Submit(ctx context.Context, items []UploadItem) ([]models.FileOutcome, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, item := range items {
		if err := attachFile(writer, item); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, string(payload))
	}

	var parsed models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return parsed.Results, nil
}

func attachFile(writer *multipart.Writer, item UploadItem) error {
	f, err := os.Open(item.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", item.Filename, err)
	}
	defer f.Close()

	part, err := writer.CreateFormFile("files", filepath.Base(item.Filename))
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %w", item.Filename, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s into request: %w", item.Filename, err)
	}
	return nil
}
