package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadReport attaches a report file to the OT appointment between doctor and patient.
func (c *Client) UploadReport(ctx context.Context, doctorEmail, patientEmail, fileName string, content io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("report", fileName)
	if err != nil {
		return fmt.Errorf("create report part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy report: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	_, err = c.send(ctx, request{
		method:      http.MethodPost,
		url:         c.path("ot", "report", doctorEmail, patientEmail),
		body:        &buf,
		contentType: w.FormDataContentType(),
	})
	return err
}

// DownloadReport streams the file behind a report URL into dst and returns the
// number of bytes written. Relative URLs resolve against the base URL.
func (c *Client) DownloadReport(ctx context.Context, fileURL string, dst io.Writer) (int64, error) {
	target, err := c.resolve(fileURL)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, newAPIError(resp.StatusCode, body)
	}
	return io.Copy(dst, resp.Body)
}
