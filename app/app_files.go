package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"spcplot/app/settings"
)

// ErrNoData is returned by operations that need a loaded table
var ErrNoData = errors.New("no data loaded")

// RecentFiles returns the most recently opened files, newest first
func (a *App) RecentFiles() []string {
	return append([]string(nil), a.settings.RecentFiles...)
}

// ClearRecentFiles empties and persists the recent file list
func (a *App) ClearRecentFiles() error {
	if err := a.settingsService.ClearRecentFiles(); err != nil {
		return err
	}
	a.settings.RecentFiles = nil
	return nil
}

// SaveViewConfig writes the current view and SPC options to path
func (a *App) SaveViewConfig(path string) error {
	cfg := settings.NewViewConfig(a.session.View, a.session.Spc)
	if err := settings.SaveViewConfig(path, cfg); err != nil {
		a.showError(err)
		return err
	}
	a.Log("info", fmt.Sprintf("[VIEW_CONFIG] Saved %s", filepath.Base(path)))
	return nil
}

// LoadViewConfig applies the view and SPC options stored at path. Derived
// overlays are recomputed on the next draw.
func (a *App) LoadViewConfig(path string) error {
	cfg, err := settings.LoadViewConfig(path)
	if err != nil {
		a.showError(err)
		return err
	}
	cfg.Apply(&a.session.View, &a.session.Spc)
	a.session.InvalidateCaches()
	a.Log("info", fmt.Sprintf("[VIEW_CONFIG] Loaded %s", filepath.Base(path)))
	return nil
}

// ExportCSV writes the current table view to path as CSV
func (a *App) ExportCSV(path string) (err error) {
	tbl := a.session.Table()
	if tbl == nil {
		return ErrNoData
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = tbl.ExportCSV(f); err != nil {
		return err
	}
	a.Log("info", fmt.Sprintf("[EXPORT] CSV %s (%d rows)", filepath.Base(path), tbl.RowCount()))
	return nil
}

// ExportXLSX writes the current table view to path as a workbook
func (a *App) ExportXLSX(path string) error {
	tbl := a.session.Table()
	if tbl == nil {
		return ErrNoData
	}
	if err := tbl.ExportXLSX(path); err != nil {
		return err
	}
	a.Log("info", fmt.Sprintf("[EXPORT] XLSX %s (%d rows)", filepath.Base(path), tbl.RowCount()))
	return nil
}
