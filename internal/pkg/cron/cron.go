package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

// Job defines a periodic background task.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

type jobState struct {
	Job
	entry     robfig.EntryID
	mu        sync.Mutex
	status    JobStatus
	message   string
	lastRunAt *time.Time
}

// ListItem is the serializable representation of a job.
type ListItem struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	Message     string     `json:"message,omitempty"`
	NextDate    time.Time  `json:"next_date"` // zero until the scheduler starts
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
}

// Scheduler runs a set of named jobs on fixed intervals.
type Scheduler struct {
	mu     sync.RWMutex
	cron   *robfig.Cron
	jobs   map[string]*jobState
	ctx    context.Context
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   robfig.New(),
		jobs:   make(map[string]*jobState),
		ctx:    context.Background(),
		logger: logger.Named("cron"),
	}
}

// Register adds a job. Intervals under a second run every second.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	js := &jobState{Job: job, status: StatusIdle}
	js.entry = s.cron.Schedule(robfig.Every(job.Interval), robfig.FuncJob(func() {
		s.execute(s.runContext(), js)
	}))
	s.jobs[job.Name] = js
}

// Start runs the registered jobs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

func (s *Scheduler) runContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

func (s *Scheduler) execute(ctx context.Context, js *jobState) {
	js.mu.Lock()
	if js.status == StatusRunning {
		js.mu.Unlock()
		return
	}
	js.status = StatusRunning
	js.mu.Unlock()

	started := time.Now()
	err := js.Fn(ctx)

	js.mu.Lock()
	js.lastRunAt = &started
	if err != nil {
		js.status = StatusReject
		js.message = err.Error()
	} else {
		js.status = StatusFulfill
		js.message = ""
	}
	js.mu.Unlock()

	if err != nil {
		s.logger.Warn("job failed", zap.String("job", js.Name), zap.Error(err))
	}
}

// Run triggers a job by name and waits for it to finish. A job that is
// already running is not started twice.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.RLock()
	js, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	s.execute(ctx, js)
	return nil
}

// List returns a summary of all registered jobs ordered by name.
func (s *Scheduler) List() []ListItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ListItem, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		items = append(items, ListItem{
			Name:        js.Name,
			Description: js.Description,
			Status:      js.status,
			Message:     js.message,
			NextDate:    s.cron.Entry(js.entry).Next,
			LastRunAt:   js.lastRunAt,
		})
		js.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
