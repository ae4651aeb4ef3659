package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spcplot/app/downsample"
	"spcplot/app/table"
)

// waitForResults polls until n results have arrived or the deadline passes
func waitForResults(t *testing.T, w *Worker, n int) []Result {
	t.Helper()
	var results []Result
	deadline := time.Now().Add(10 * time.Second)
	for len(results) < n && time.Now().Before(deadline) {
		results = append(results, w.Poll()...)
		time.Sleep(5 * time.Millisecond)
	}
	if len(results) < n {
		t.Fatalf("Expected %d results, got %d", n, len(results))
	}
	return results
}

func TestLoadFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "worker_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n3,4\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	w := New(Config{}, nil)
	w.Start(context.Background())
	defer w.Shutdown()

	okID, err := w.Submit(&LoadFile{Path: path})
	if err != nil {
		t.Fatalf("Failed to submit load: %v", err)
	}
	badID, err := w.Submit(&LoadFile{Path: filepath.Join(dir, "data.xlsx")})
	if err != nil {
		t.Fatalf("Failed to submit load: %v", err)
	}
	if okID == "" || okID == badID {
		t.Fatalf("Expected distinct request IDs, got %q and %q", okID, badID)
	}

	results := waitForResults(t, w, 2)

	loaded, ok := results[0].(FileLoaded)
	if !ok || loaded.ID != okID {
		t.Fatalf("Expected first result to be the load of %s, got %#v", okID, results[0])
	}
	if loaded.Table.RowCount() != 2 || loaded.Path != path {
		t.Errorf("Unexpected table: %d rows from %s", loaded.Table.RowCount(), loaded.Path)
	}

	failed, ok := results[1].(Error)
	if !ok || failed.ID != badID {
		t.Fatalf("Expected error result for %s, got %#v", badID, results[1])
	}
	if failed.Kind != table.UnsupportedFormat || !errors.Is(failed.Err, table.ErrUnsupportedFormat) {
		t.Errorf("Expected unsupported format, got %v (%v)", failed.Kind, failed.Err)
	}
}

func TestComputeLTTBOrder(t *testing.T) {
	w := New(Config{QueueSize: 8}, nil)
	w.Start(context.Background())
	defer w.Shutdown()

	points := make([]downsample.Point, 500)
	for i := range points {
		points[i] = downsample.Point{X: float64(i), Y: float64(i * i % 13)}
	}

	var ids []string
	for series := 0; series < 4; series++ {
		id, err := w.Submit(&ComputeLTTB{SeriesID: series, Points: points, Target: 50})
		if err != nil {
			t.Fatalf("Failed to submit job: %v", err)
		}
		ids = append(ids, id)
	}

	results := waitForResults(t, w, 4)
	for i, r := range results {
		ready, ok := r.(LttbReady)
		if !ok {
			t.Fatalf("Expected LttbReady, got %#v", r)
		}
		if ready.ID != ids[i] || ready.SeriesID != i {
			t.Errorf("Expected result %d for series %d, got %s series %d", i, i, ready.ID, ready.SeriesID)
		}
		if len(ready.Points) != 50 {
			t.Errorf("Expected 50 points, got %d", len(ready.Points))
		}
	}
}

func TestSubmitErrors(t *testing.T) {
	w := New(Config{QueueSize: 1}, nil)
	if _, err := w.Submit(&LoadFile{Path: "x.csv"}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning before Start, got %v", err)
	}

	// Mark running without dispatchers so the queue stays full
	w.running.Store(true)
	if _, err := w.Submit(&ComputeLTTB{Target: 10}); err != nil {
		t.Fatalf("Failed to submit first job: %v", err)
	}
	if _, err := w.Submit(&ComputeLTTB{Target: 10}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestShutdown(t *testing.T) {
	w := New(Config{}, nil)
	w.Start(context.Background())
	w.Shutdown()

	if _, err := w.Submit(&ComputeLTTB{Target: 10}); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Expected ErrNotRunning after Shutdown, got %v", err)
	}
	if got := w.Poll(); len(got) != 0 {
		t.Errorf("Expected no results, got %v", got)
	}

	// Shutdown twice is a no-op
	w.Shutdown()
}
