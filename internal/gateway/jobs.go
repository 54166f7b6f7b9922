package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"vidgen/internal/codec"
	"vidgen/internal/services"
)

// Job is the render service's view of a submitted task.
type Job struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time"`
	OutputFile  *string `json:"output_file"`
	DownloadURL *string `json:"download_url"`
	Error       *string `json:"error"`
}

// CreateJob submits a video render. The service answers with the new job,
// normally queued.
func (c *Client) CreateJob(ctx context.Context, env codec.Envelope) (Job, error) {
	var job Job
	if err := c.doJSON(ctx, "create job", http.MethodPost, "/api/v1/videos/generate", env, &job); err != nil {
		return Job{}, err
	}
	if strings.TrimSpace(job.ID) == "" {
		return Job{}, services.Wrap(services.ErrTransport, "gateway", "create job", "response has no job id", nil)
	}
	return job, nil
}

// GetJob fetches the current snapshot of one job.
func (c *Client) GetJob(ctx context.Context, id string) (Job, error) {
	var job Job
	if err := c.doJSON(ctx, "get job", http.MethodGet, "/api/v1/tasks/"+url.PathEscape(id), nil, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// ListJobs returns every job the service knows about.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.doJSON(ctx, "list jobs", http.MethodGet, "/api/v1/tasks/", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// DeleteJob removes a job on the service.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, "delete job", http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil)
	return err
}

// GenerateImage renders an image project synchronously and returns the
// encoded image with its content type.
func (c *Client) GenerateImage(ctx context.Context, env codec.Envelope) ([]byte, string, error) {
	data, header, err := c.do(ctx, "generate image", http.MethodPost, "/api/v1/images/generate", env)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", services.Wrap(services.ErrTransport, "gateway", "generate image", "empty response body", nil)
	}
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Download fetches the rendered file of a completed job. downloadURL is the
// service-relative path the job reported.
func (c *Client) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	path := strings.TrimSpace(downloadURL)
	if path == "" {
		return nil, services.Wrap(services.ErrValidation, "gateway", "download", "job has no download url", nil)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	data, _, err := c.do(ctx, "download", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return data, nil
}
