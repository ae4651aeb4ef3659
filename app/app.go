// Package app wires the background worker, the open session and the user
// settings together. A UI layer calls Frame once per frame and reads the
// session for drawing.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"spcplot/app/downsample"
	"spcplot/app/session"
	"spcplot/app/settings"
	"spcplot/app/table"
	"spcplot/app/worker"
)

// UserMessage is an error banner shown to the user
type UserMessage struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// FrameResult reports what changed during one Frame call
type FrameResult struct {
	Loaded     bool
	Failed     bool
	LttbSeries []int
}

// App struct
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	settingsService *settings.SettingsService
	settings        settings.Settings
	instanceID      string

	worker  *worker.Worker
	session *session.Session

	// loads tracks the generation of every submitted load; only the newest
	// generation is applied
	loads          map[string]uint64
	loadGeneration uint64
	lttbRequests   map[string]uint64
	lttbResults    map[int][]downsample.Point

	message  *UserMessage
	warnings []string

	sinkMu  sync.RWMutex
	logSink func(level, message string)
}

// NewApp creates a new App backed by the settings file at settingsPath (empty
// for the file next to the executable)
func NewApp(settingsPath string) *App {
	svc := settings.NewSettingsService(settingsPath)
	current, err := svc.GetSettings()
	if err != nil {
		log.Printf("[SETTINGS] Failed to read settings, using defaults: %v", err)
	}

	a := &App{
		settingsService: svc,
		settings:        current,
		loads:           make(map[string]uint64),
		lttbRequests:    make(map[string]uint64),
		lttbResults:     make(map[int][]downsample.Point),
	}
	a.worker = worker.New(worker.Config{QueueSize: current.WorkerQueueSize}, a)
	a.session = session.New(session.OptionsFromSettings(current), a)
	a.session.View.HistogramBins = current.HistogramBins
	return a
}

// Startup starts the background worker
func (a *App) Startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.worker.Start(a.ctx)

	id, err := a.settingsService.EnsureInstanceID()
	if err != nil {
		a.Log("warning", fmt.Sprintf("[SETTINGS] Failed to persist instance ID: %v", err))
	}
	a.instanceID = id
	a.Log("info", "[APP_STARTUP] Worker started")
}

// Shutdown stops the background worker and drops pending results
func (a *App) Shutdown() {
	a.worker.Shutdown()
	if a.cancel != nil {
		a.cancel()
	}
}

// SetLogSink forwards every log line to fn as well as the process log
func (a *App) SetLogSink(fn func(level, message string)) {
	a.sinkMu.Lock()
	defer a.sinkMu.Unlock()
	a.logSink = fn
}

// Log implements the component Logger interfaces
func (a *App) Log(level, message string) {
	if a == nil {
		return
	}
	a.sinkMu.RLock()
	sink := a.logSink
	a.sinkMu.RUnlock()

	if sink != nil {
		sink(level, message)
		return
	}
	if level != "debug" {
		log.Printf("%s: %s", level, message)
	}
}

// Session returns the open session
func (a *App) Session() *session.Session { return a.session }

// Settings returns the effective settings
func (a *App) Settings() settings.Settings { return a.settings }

// InstanceID returns the installation identifier
func (a *App) InstanceID() string { return a.instanceID }

// Message returns the current error banner, or nil
func (a *App) Message() *UserMessage { return a.message }

// DismissMessage clears the error banner
func (a *App) DismissMessage() { a.message = nil }

// ParseWarnings returns the warnings of the last successful load
func (a *App) ParseWarnings() []string { return a.warnings }

// IsLoading reports whether the newest load is still running
func (a *App) IsLoading() bool {
	for _, gen := range a.loads {
		if gen == a.loadGeneration {
			return true
		}
	}
	return false
}

// OpenFile starts loading path in the background. A load started later
// supersedes this one.
func (a *App) OpenFile(path string) error {
	a.loadGeneration++
	id, err := a.worker.Submit(&worker.LoadFile{Path: path})
	if err != nil {
		a.showError(err)
		return err
	}
	a.loads[id] = a.loadGeneration
	a.Log("info", fmt.Sprintf("[APP_OPEN] %s (request %s)", filepath.Base(path), id))
	return nil
}

// RequestLTTB downsamples series idx of the session in the background to
// target points. The result is available from BackgroundPoints once a Frame
// has received it.
func (a *App) RequestLTTB(idx, target int) error {
	all, err := a.session.Series()
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(all) {
		return fmt.Errorf("series index %d out of range (max: %d)", idx, len(all)-1)
	}
	series := all[idx]
	points := append([]downsample.Point(nil), series.Points...)
	id, err := a.worker.Submit(&worker.ComputeLTTB{SeriesID: series.Column, Points: points, Target: target})
	if err != nil {
		return err
	}
	a.lttbRequests[id] = a.session.Version()
	return nil
}

// BackgroundPoints returns the last background LTTB result for a Y column
func (a *App) BackgroundPoints(column int) ([]downsample.Point, bool) {
	points, ok := a.lttbResults[column]
	return points, ok
}

// Frame applies every finished background result. Loads that were
// superseded by a newer OpenFile are discarded.
func (a *App) Frame() FrameResult {
	var res FrameResult
	for _, r := range a.worker.Poll() {
		switch r := r.(type) {
		case worker.FileLoaded:
			if !a.takeCurrentLoad(r.ID) {
				a.Log("debug", fmt.Sprintf("[APP_LOAD_SUPERSEDED] %s", filepath.Base(r.Path)))
				continue
			}
			if err := a.applyTable(r.Path, r.Table); err != nil {
				a.showError(err)
				res.Failed = true
				continue
			}
			res.Loaded = true
		case worker.LttbReady:
			version, ok := a.lttbRequests[r.ID]
			delete(a.lttbRequests, r.ID)
			if !ok || version != a.session.Version() {
				continue
			}
			a.lttbResults[r.SeriesID] = r.Points
			res.LttbSeries = append(res.LttbSeries, r.SeriesID)
		case worker.Error:
			if _, isLoad := a.loads[r.ID]; isLoad && !a.takeCurrentLoad(r.ID) {
				continue
			}
			delete(a.lttbRequests, r.ID)
			err := r.Err
			if err == nil {
				err = errors.New(r.Message)
			}
			a.showError(err)
			res.Failed = true
		}
	}
	return res
}

// takeCurrentLoad forgets request id and reports whether it was the newest load
func (a *App) takeCurrentLoad(id string) bool {
	gen, ok := a.loads[id]
	delete(a.loads, id)
	return ok && gen == a.loadGeneration
}

func (a *App) applyTable(path string, tbl *table.Table) error {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.session.SetTable(ctx, tbl); err != nil {
		return err
	}
	a.lttbResults = make(map[int][]downsample.Point)
	a.lttbRequests = make(map[string]uint64)
	a.message = nil

	a.warnings = a.session.ParseWarnings()
	for _, w := range a.warnings {
		a.Log("warning", "[APP_PARSE_WARNING] "+w)
	}

	recent, err := a.settingsService.AddRecentFile(path)
	if err != nil {
		a.Log("warning", fmt.Sprintf("[SETTINGS] Failed to update recent files: %v", err))
	} else {
		a.settings.RecentFiles = recent
	}
	return nil
}

// showError turns err into the error banner
func (a *App) showError(err error) {
	a.message = messageFor(err)
	a.Log("error", fmt.Sprintf("[APP_ERROR] %s: %s", a.message.Title, a.message.Detail))
}

func messageFor(err error) *UserMessage {
	var dataErr *table.DataError
	if errors.As(err, &dataErr) {
		return &UserMessage{Title: dataErr.Title(), Detail: err.Error()}
	}
	return &UserMessage{Title: ternary(errors.Is(err, worker.ErrQueueFull), "Busy", "Error"), Detail: err.Error()}
}

// ternary returns a if cond is true, otherwise b
func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
