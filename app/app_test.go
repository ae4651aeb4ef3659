package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"spcplot/app/table"
	"spcplot/app/worker"
)

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "app_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	a := NewApp(filepath.Join(dir, "spcplot.yml"))
	a.SetLogSink(func(level, message string) {})
	a.Startup(context.Background())
	return a, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// frameUntil calls Frame until done reports true or the deadline passes
func frameUntil(t *testing.T, a *App, done func(FrameResult) bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if done(a.Frame()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for background work")
}

func TestOpenFile(t *testing.T) {
	a, dir := newTestApp(t)
	defer os.RemoveAll(dir)
	defer a.Shutdown()

	path := filepath.Join(dir, "data.csv")
	writeFile(t, path, "t,v\n1,2\n2,3\n3,5\n")

	if err := a.OpenFile(path); err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	if !a.IsLoading() {
		t.Error("Expected load to be pending")
	}
	frameUntil(t, a, func(r FrameResult) bool { return r.Loaded || r.Failed })

	if a.IsLoading() {
		t.Error("Expected load to be finished")
	}
	if a.Message() != nil {
		t.Fatalf("Unexpected error banner %+v", a.Message())
	}
	if !a.Session().HasData() || a.Session().Table().RowCount() != 3 {
		t.Fatal("Expected three rows to be loaded")
	}
	if !reflect.DeepEqual(a.RecentFiles(), []string{path}) {
		t.Errorf("Expected recent files [%s], got %v", path, a.RecentFiles())
	}

	// recent files survive a restart
	b := NewApp(filepath.Join(dir, "spcplot.yml"))
	if !reflect.DeepEqual(b.RecentFiles(), []string{path}) {
		t.Errorf("Expected persisted recent files, got %v", b.RecentFiles())
	}
}

func TestOpenFileSuperseded(t *testing.T) {
	a, dir := newTestApp(t)
	defer os.RemoveAll(dir)
	defer a.Shutdown()

	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	writeFile(t, first, "a,b\n1,2\n")
	writeFile(t, second, "c,d\n1,2\n3,4\n")

	if err := a.OpenFile(first); err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	if err := a.OpenFile(second); err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	frameUntil(t, a, func(r FrameResult) bool { return r.Loaded && !a.IsLoading() })

	if names := a.Session().Table().ColumnNames(); !reflect.DeepEqual(names, []string{"c", "d"}) {
		t.Errorf("Expected the second file to win, got columns %v", names)
	}
	// the first result may arrive after the second; it must never be applied
	frameUntil(t, a, func(FrameResult) bool { return len(a.loads) == 0 })
	if names := a.Session().Table().ColumnNames(); names[0] != "c" {
		t.Errorf("Superseded load was applied: %v", names)
	}
}

func TestOpenFileError(t *testing.T) {
	a, dir := newTestApp(t)
	defer os.RemoveAll(dir)
	defer a.Shutdown()

	if err := a.OpenFile(filepath.Join(dir, "missing.csv")); err != nil {
		t.Fatalf("Failed to submit load: %v", err)
	}
	frameUntil(t, a, func(r FrameResult) bool { return r.Failed })

	msg := a.Message()
	if msg == nil || msg.Title != "File Error" {
		t.Fatalf("Expected file error banner, got %+v", msg)
	}
	if !strings.Contains(msg.Detail, "missing.csv") {
		t.Errorf("Expected detail to name the file, got %q", msg.Detail)
	}
	if a.Session().HasData() {
		t.Error("Expected no data after a failed load")
	}
	a.DismissMessage()
	if a.Message() != nil {
		t.Error("Expected banner to be dismissed")
	}
}

func TestMessageFor(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
	}{
		{"data error", &table.DataError{Kind: table.UnsupportedFormat, Detail: "Unsupported file format: '.xls'"}, "Unsupported Format"},
		{"wrapped data error", errors.Join(errors.New("context"), &table.DataError{Kind: table.ParseError}), "Data Error"},
		{"queue full", worker.ErrQueueFull, "Busy"},
		{"plain", errors.New("boom"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messageFor(tt.err); got.Title != tt.title || got.Detail != tt.err.Error() {
				t.Errorf("messageFor(%v) = %+v, expected title %q", tt.err, got, tt.title)
			}
		})
	}
}

func TestRequestLTTB(t *testing.T) {
	a, dir := newTestApp(t)
	defer os.RemoveAll(dir)
	defer a.Shutdown()

	var b strings.Builder
	b.WriteString("x,y\n")
	for i := 0; i < 500; i++ {
		b.WriteString(strconv.Itoa(i) + "," + strconv.Itoa(i%17) + "\n")
	}
	path := filepath.Join(dir, "wave.csv")
	writeFile(t, path, b.String())

	if err := a.RequestLTTB(0, 50); err == nil {
		t.Error("Expected error without data")
	}
	if err := a.OpenFile(path); err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	frameUntil(t, a, func(r FrameResult) bool { return r.Loaded })

	if err := a.RequestLTTB(3, 50); err == nil {
		t.Error("Expected error for out of range series")
	}
	if err := a.RequestLTTB(0, 50); err != nil {
		t.Fatalf("Failed to request LTTB: %v", err)
	}
	frameUntil(t, a, func(r FrameResult) bool { return len(r.LttbSeries) > 0 })

	points, ok := a.BackgroundPoints(1)
	if !ok || len(points) != 50 {
		t.Fatalf("Expected 50 background points for column 1, got %d (%v)", len(points), ok)
	}
}

func TestViewConfigPersistence(t *testing.T) {
	a, dir := newTestApp(t)
	defer os.RemoveAll(dir)
	defer a.Shutdown()

	a.Session().View.ShowGrid = false
	a.Session().View.HistogramBins = 35
	a.Session().Spc.SigmaMultiplier = 2.5
	a.Session().Spc.ShowWERules = true

	path := filepath.Join(dir, "view.json")
	if err := a.SaveViewConfig(path); err != nil {
		t.Fatalf("Failed to save view config: %v", err)
	}

	b := NewApp(filepath.Join(dir, "spcplot.yml"))
	if err := b.LoadViewConfig(path); err != nil {
		t.Fatalf("Failed to load view config: %v", err)
	}
	if !reflect.DeepEqual(b.Session().View, a.Session().View) {
		t.Errorf("View options differ: %+v vs %+v", b.Session().View, a.Session().View)
	}
	if b.Session().Spc.SigmaMultiplier != 2.5 || !b.Session().Spc.ShowWERules {
		t.Errorf("SPC options not restored: %+v", b.Session().Spc)
	}

	if err := b.LoadViewConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error loading a missing view config")
	}
	if b.Message() == nil {
		t.Error("Expected error banner for a missing view config")
	}
}

func TestExport(t *testing.T) {
	a, dir := newTestApp(t)
	defer os.RemoveAll(dir)
	defer a.Shutdown()

	out := filepath.Join(dir, "out.csv")
	if err := a.ExportCSV(out); !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData, got %v", err)
	}

	path := filepath.Join(dir, "data.csv")
	writeFile(t, path, "t,v\n1,2\n2,3\n")
	if err := a.OpenFile(path); err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	frameUntil(t, a, func(r FrameResult) bool { return r.Loaded })

	if err := a.ExportCSV(out); err != nil {
		t.Fatalf("Failed to export CSV: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "t,v\n") {
		t.Errorf("Unexpected CSV export %q", data)
	}

	xlsx := filepath.Join(dir, "out.xlsx")
	if err := a.ExportXLSX(xlsx); err != nil {
		t.Fatalf("Failed to export XLSX: %v", err)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("Expected workbook to exist: %v", err)
	}
}
