package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/metrics"
	"github.com/jnovak/facecat/internal/pipeline"
)

// JobStatus is the lifecycle state of an async pipeline run.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job tracks one asynchronous scan-index-cluster run.
type Job struct {
	ID          string     `json:"id"`
	Root        string     `json:"root"`
	Status      JobStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	mu     sync.RWMutex
	cancel context.CancelFunc
}

func (j *Job) setStatus(status JobStatus, errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Error = errMsg
	if status != JobStatusRunning {
		now := time.Now().UTC()
		j.CompletedAt = &now
	}
}

func (j *Job) snapshot() Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Job{ID: j.ID, Root: j.Root, Status: j.Status, StartedAt: j.StartedAt, CompletedAt: j.CompletedAt, Error: j.Error}
}

// Cancel requests cooperative cancellation of the job's run.
func (j *Job) Cancel() {
	j.mu.RLock()
	cancel := j.cancel
	j.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// JobManager tracks every in-flight and finished pipeline run.
type JobManager struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

func (m *JobManager) add(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
}

func (m *JobManager) Get(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

func (m *JobManager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.snapshot())
	}
	return out
}

// JobsHandler triggers and reports on asynchronous pipeline runs.
type JobsHandler struct {
	runner  *pipeline.Runner
	manager *JobManager
	events  func(pipeline.Event) // optional broadcast to the live progress stream
}

func NewJobsHandler(runner *pipeline.Runner, manager *JobManager, events func(pipeline.Event)) *JobsHandler {
	return &JobsHandler{runner: runner, manager: manager, events: events}
}

type startJobRequest struct {
	Root string `json:"root"`
}

// Start launches a scan-index-cluster run as a background job and
// returns immediately with its id.
func (h *JobsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Root == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{ID: uuid.NewString(), Root: req.Root, Status: JobStatusRunning, StartedAt: time.Now().UTC(), cancel: cancel}
	h.manager.add(job)
	metrics.ActiveJobs.Inc()

	go func() {
		defer metrics.ActiveJobs.Dec()
		defer cancel()

		session, err := h.runner.Run(ctx, req.Root, func(e pipeline.Event) {
			if h.events != nil {
				h.events(e)
			}
		})
		switch {
		case err == nil:
			job.setStatus(JobStatusCompleted, "")
		case session != nil && session.Status == catalog.ScanCancelled:
			job.setStatus(JobStatusCancelled, err.Error())
		default:
			job.setStatus(JobStatusFailed, err.Error())
		}
	}()

	respondJSON(w, http.StatusAccepted, job.snapshot())
}

// Get reports the current status of a job.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chiURLParamID(r)
	job := h.manager.Get(id)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.snapshot())
}

// List returns every tracked job.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.List())
}

// Cancel requests cooperative cancellation of a running job.
func (h *JobsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chiURLParamID(r)
	job := h.manager.Get(id)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	job.Cancel()
	respondJSON(w, http.StatusOK, nil)
}
