// Package worker runs file loads and LTTB jobs off the interactive goroutine.
//
// Requests go in through Submit, results come back through Poll; neither
// blocks. Loads are processed by one goroutine and LTTB jobs by another, so
// each kind completes in submission order while the two kinds interleave
// freely.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spcplot/app/downsample"
	"spcplot/app/table"
)

// DefaultQueueSize is the capacity of each request and the result channel
const DefaultQueueSize = 64

var (
	// ErrQueueFull is returned by Submit when the request channel is full
	ErrQueueFull = errors.New("worker queue is full")
	// ErrNotRunning is returned by Submit before Start or after Shutdown
	ErrNotRunning = errors.New("worker is not running")
)

// Logger interface for worker logging
type Logger interface {
	Log(level, message string)
}

// Config holds worker settings
type Config struct {
	QueueSize int
}

// Request is a unit of background work
type Request interface {
	requestID() string
}

// LoadFile asks the worker to load a table from disk
type LoadFile struct {
	ID   string
	Path string
}

func (r *LoadFile) requestID() string { return r.ID }

// ComputeLTTB asks the worker to downsample a series. Points is owned by the
// worker once submitted.
type ComputeLTTB struct {
	ID       string
	SeriesID int
	Points   []downsample.Point
	Target   int
}

func (r *ComputeLTTB) requestID() string { return r.ID }

// Result is the outcome of a request
type Result interface {
	RequestID() string
}

// FileLoaded carries a freshly loaded table
type FileLoaded struct {
	ID    string
	Path  string
	Table *table.Table
}

// RequestID implements Result
func (r FileLoaded) RequestID() string { return r.ID }

// LttbReady carries a downsampled series
type LttbReady struct {
	ID       string
	SeriesID int
	Points   []downsample.Point
}

// RequestID implements Result
func (r LttbReady) RequestID() string { return r.ID }

// Error reports a failed request. Kind is the table error kind for load
// failures.
type Error struct {
	ID      string
	Kind    table.ErrorKind
	Message string
	Err     error
}

// RequestID implements Result
func (r Error) RequestID() string { return r.ID }

// Worker owns the request and result channels and the dispatcher goroutines
type Worker struct {
	loads   chan *LoadFile
	lttbs   chan *ComputeLTTB
	results chan Result

	cancel   context.CancelFunc
	group    *errgroup.Group
	running  atomic.Bool
	stopping atomic.Bool
	mu       sync.Mutex
	logger   Logger
}

// New creates a worker. Call Start before submitting.
func New(cfg Config, logger Logger) *Worker {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Worker{
		loads:   make(chan *LoadFile, size),
		lttbs:   make(chan *ComputeLTTB, size),
		results: make(chan Result, size),
		logger:  logger,
	}
}

// Start launches the dispatchers. They stop when ctx is cancelled or
// Shutdown is called.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running.Load() {
		return
	}

	w.stopping.Store(false)
	ctx, w.cancel = context.WithCancel(ctx)
	w.group, ctx = errgroup.WithContext(ctx)
	w.group.Go(func() error { return w.runLoads(ctx) })
	w.group.Go(func() error { return w.runLTTB(ctx) })
	w.running.Store(true)
}

// Submit enqueues a request without blocking and returns its ID. An empty
// request ID is replaced with a new UUID.
func (w *Worker) Submit(req Request) (string, error) {
	if !w.running.Load() || w.stopping.Load() {
		return "", ErrNotRunning
	}

	switch r := req.(type) {
	case *LoadFile:
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		select {
		case w.loads <- r:
		default:
			return "", ErrQueueFull
		}
		w.log("debug", fmt.Sprintf("[WORKER_SUBMIT] Load %s: %s", r.ID, r.Path))
		return r.ID, nil
	case *ComputeLTTB:
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		select {
		case w.lttbs <- r:
		default:
			return "", ErrQueueFull
		}
		w.log("debug", fmt.Sprintf("[WORKER_SUBMIT] LTTB %s: series %d, %d -> %d points", r.ID, r.SeriesID, len(r.Points), r.Target))
		return r.ID, nil
	default:
		return "", fmt.Errorf("unsupported request type %T", req)
	}
}

// Poll drains every result available now without blocking
func (w *Worker) Poll() []Result {
	var out []Result
	for {
		select {
		case r := <-w.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Shutdown stops the dispatchers and waits for them. Work still queued is
// discarded and results finished afterwards are dropped.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running.Load() {
		return
	}

	w.stopping.Store(true)
	w.cancel()
	if err := w.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		w.log("warning", fmt.Sprintf("[WORKER_SHUTDOWN] Dispatcher error: %v", err))
	}
	w.running.Store(false)
	w.log("info", "[WORKER_SHUTDOWN] Stopped")
}

func (w *Worker) runLoads(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.loads:
			w.log("info", fmt.Sprintf("[WORKER_LOAD] %s: %s", req.ID, req.Path))
			tbl, err := table.Load(ctx, req.Path)
			if err != nil {
				w.publish(ctx, loadError(req.ID, err))
				continue
			}
			w.publish(ctx, FileLoaded{ID: req.ID, Path: req.Path, Table: tbl})
		}
	}
}

func (w *Worker) runLTTB(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.lttbs:
			points := downsample.LTTB(req.Points, req.Target)
			w.publish(ctx, LttbReady{ID: req.ID, SeriesID: req.SeriesID, Points: points})
		}
	}
}

// publish delivers a result unless shutdown has begun
func (w *Worker) publish(ctx context.Context, r Result) {
	if w.stopping.Load() {
		w.log("debug", fmt.Sprintf("[WORKER_DROP] Result %s after shutdown", r.RequestID()))
		return
	}
	select {
	case w.results <- r:
	case <-ctx.Done():
		w.log("debug", fmt.Sprintf("[WORKER_DROP] Result %s after shutdown", r.RequestID()))
	}
}

func loadError(id string, err error) Error {
	kind := table.IoError
	var dataErr *table.DataError
	if errors.As(err, &dataErr) {
		kind = dataErr.Kind
	}
	return Error{ID: id, Kind: kind, Message: err.Error(), Err: err}
}

func (w *Worker) log(level, message string) {
	if w.logger != nil {
		w.logger.Log(level, message)
	}
}
