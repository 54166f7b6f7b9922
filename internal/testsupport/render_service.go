package testsupport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vidgen/internal/gateway"
)

// Call is one request observed by RenderService.
type Call struct {
	Method    string
	Path      string
	Body      []byte
	RequestID string
}

// RenderService is an in-memory stand-in for the remote render API. Jobs
// advance one step through their status script on every status fetch.
type RenderService struct {
	Server *httptest.Server

	mu           sync.Mutex
	calls        []Call
	jobs         map[string]*scriptedJob
	order        []string
	nextID       int
	script       []string
	previewCount int
	previewErr   *httpFailure
	createErr    *httpFailure
}

type scriptedJob struct {
	job    gateway.Job
	script []string
}

type httpFailure struct {
	code   int
	detail string
}

// NewRenderService starts the fake service and closes it when the test ends.
func NewRenderService(t testing.TB) *RenderService {
	t.Helper()
	rs := &RenderService{
		jobs:   make(map[string]*scriptedJob),
		script: []string{"processing", "completed"},
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.handle))
	t.Cleanup(rs.Server.Close)
	return rs
}

// URL returns the base URL of the fake service.
func (rs *RenderService) URL() string { return rs.Server.URL }

// ScriptJobs sets the statuses reported by status fetches of jobs created
// from now on. The last status repeats.
func (rs *RenderService) ScriptJobs(statuses ...string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.script = append([]string(nil), statuses...)
}

// FailPreviews makes preview endpoints answer with code and detail. A zero
// code restores success.
func (rs *RenderService) FailPreviews(code int, detail string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.previewErr = failure(code, detail)
}

// FailCreate makes job submission answer with code and detail.
func (rs *RenderService) FailCreate(code int, detail string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.createErr = failure(code, detail)
}

// AddJob registers a job as if it had been submitted earlier.
func (rs *RenderService) AddJob(job gateway.Job) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.jobs[job.ID] = &scriptedJob{job: job}
	rs.order = append(rs.order, job.ID)
}

// Calls returns the requests whose path starts with prefix.
func (rs *RenderService) Calls(prefix string) []Call {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var out []Call
	for _, c := range rs.calls {
		if strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func failure(code int, detail string) *httpFailure {
	if code == 0 {
		return nil
	}
	return &httpFailure{code: code, detail: detail}
}

func (rs *RenderService) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rs.mu.Lock()
	rs.calls = append(rs.calls, Call{Method: r.Method, Path: r.URL.Path, Body: body, RequestID: r.Header.Get(gateway.RequestIDHeader)})
	rs.mu.Unlock()

	switch {
	case r.URL.Path == "/api/v1/previews/scene" || r.URL.Path == "/api/v1/previews/text":
		rs.handlePreview(w)
	case r.URL.Path == "/api/v1/videos/generate" && r.Method == http.MethodPost:
		rs.handleCreate(w)
	case r.URL.Path == "/api/v1/images/generate" && r.Method == http.MethodPost:
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\nfake-image"))
	case strings.HasPrefix(r.URL.Path, "/api/v1/videos/download/") && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("fake-mp4:" + strings.TrimPrefix(r.URL.Path, "/api/v1/videos/download/")))
	case r.URL.Path == "/api/v1/tasks/" && r.Method == http.MethodGet:
		rs.handleList(w)
	case strings.HasPrefix(r.URL.Path, "/api/v1/tasks/"):
		rs.handleTask(w, r, strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/"))
	case r.URL.Path == "/api/v1/utils/list_fonts":
		writeJSON(w, http.StatusOK, map[string]any{"fonts": []gateway.Font{
			{Name: "Arial", Path: "/usr/share/fonts/Arial.ttf", Type: "system"},
			{Name: "Brand", Path: "/srv/fonts/Brand.otf", Type: "custom"},
		}})
	case r.URL.Path == "/api/v1/utils/list_animations":
		writeJSON(w, http.StatusOK, map[string]any{"animations": []gateway.Effect{{Name: "fade_in", Description: "Fade in"}}})
	case r.URL.Path == "/api/v1/utils/list_transitions":
		writeJSON(w, http.StatusOK, map[string]any{"transitions": []gateway.Effect{{Name: "fade", Description: "Crossfade"}}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (rs *RenderService) handlePreview(w http.ResponseWriter) {
	rs.mu.Lock()
	failure := rs.previewErr
	rs.previewCount++
	n := rs.previewCount
	rs.mu.Unlock()
	if failure != nil {
		writeJSON(w, failure.code, map[string]string{"detail": failure.detail})
		return
	}
	writeJSON(w, http.StatusOK, gateway.Preview{Image: fmt.Sprintf("data:image/png;base64,preview-%d", n)})
}

func (rs *RenderService) handleCreate(w http.ResponseWriter) {
	rs.mu.Lock()
	if rs.createErr != nil {
		failure := rs.createErr
		rs.mu.Unlock()
		writeJSON(w, failure.code, map[string]string{"detail": failure.detail})
		return
	}
	rs.nextID++
	id := fmt.Sprintf("job-%d", rs.nextID)
	job := gateway.Job{ID: id, Status: "queued", StartTime: time.Now().UTC().Format(time.RFC3339Nano)}
	rs.jobs[id] = &scriptedJob{job: job, script: append([]string(nil), rs.script...)}
	rs.order = append(rs.order, id)
	rs.mu.Unlock()
	writeJSON(w, http.StatusOK, job)
}

func (rs *RenderService) handleList(w http.ResponseWriter) {
	rs.mu.Lock()
	jobs := make([]gateway.Job, 0, len(rs.order))
	for _, id := range rs.order {
		if sj, ok := rs.jobs[id]; ok {
			jobs = append(jobs, sj.job)
		}
	}
	rs.mu.Unlock()
	writeJSON(w, http.StatusOK, jobs)
}

func (rs *RenderService) handleTask(w http.ResponseWriter, r *http.Request, id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	sj, ok := rs.jobs[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
		return
	}
	switch r.Method {
	case http.MethodDelete:
		delete(rs.jobs, id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
	case http.MethodGet:
		if len(sj.script) > 0 {
			sj.job.Status = sj.script[0]
			if len(sj.script) > 1 {
				sj.script = sj.script[1:]
			}
			switch sj.job.Status {
			case "completed":
				end := time.Now().UTC().Format(time.RFC3339Nano)
				out := "/outputs/" + id + ".mp4"
				url := "/api/v1/videos/download/" + id
				sj.job.EndTime, sj.job.OutputFile, sj.job.DownloadURL = &end, &out, &url
			case "failed":
				end := time.Now().UTC().Format(time.RFC3339Nano)
				msg := "ffmpeg exited with status 1"
				sj.job.EndTime, sj.job.Error = &end, &msg
			}
		}
		writeJSON(w, http.StatusOK, sj.job)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
