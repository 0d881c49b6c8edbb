package ingest

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

// WebhookNotifier forwards a copy of an uploaded file to an external
// automation endpoint. It is a fire-and-forget side channel: callers log a
// failed Notify and move on, it never changes the outcome of a run.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier returns nil when url is empty; a nil notifier skips the
// notify step entirely.
func NewWebhookNotifier(url string) *WebhookNotifier {
	if url == "" {
		return nil
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Notify posts the file as a multipart form, mirroring the browser upload.
func (n *WebhookNotifier) Notify(ctx context.Context, fileName string, data []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("build webhook form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("build webhook form: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("build webhook form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, &body)
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
