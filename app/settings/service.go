package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SettingsService manages reading/writing settings from disk.
type SettingsService struct {
	path string
}

// NewSettingsService returns a service backed by path. An empty path means
// spcplot.yml next to the executable.
func NewSettingsService(path string) *SettingsService {
	return &SettingsService{path: path}
}

// Path returns the settings file location
func (s *SettingsService) Path() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	return settingsFilePath()
}

// GetSettings returns the effective settings (defaults overlaid with file overrides if any).
func (s *SettingsService) GetSettings() (Settings, error) {
	path, err := s.Path()
	if err != nil {
		return DefaultSettings(), err
	}
	return loadSettings(path)
}

// SaveSettings saves only the values that differ from defaults into YAML.
func (s *SettingsService) SaveSettings(in Settings) error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	old, _ := loadSettings(path)

	// Build a minimal map containing only non-default values to avoid zero-value serialization pitfalls
	data := make(map[string]any)
	if in.DownsampleThreshold != defaultSettings.DownsampleThreshold && in.DownsampleThreshold > 0 {
		data["downsample_threshold"] = in.DownsampleThreshold
	}
	if in.LttbTargetPoints != defaultSettings.LttbTargetPoints && in.LttbTargetPoints > 0 {
		data["lttb_target_points"] = in.LttbTargetPoints
	}
	if in.ZoomCacheMaxEntries != defaultSettings.ZoomCacheMaxEntries && in.ZoomCacheMaxEntries > 0 {
		data["zoom_cache_max_entries"] = in.ZoomCacheMaxEntries
	}
	if in.HistogramBins != defaultSettings.HistogramBins && in.HistogramBins > 0 {
		data["histogram_bins"] = in.HistogramBins
	}
	if in.MaxRecentFiles != defaultSettings.MaxRecentFiles {
		data["max_recent_files"] = in.MaxRecentFiles
	}
	if in.WorkerQueueSize != defaultSettings.WorkerQueueSize && in.WorkerQueueSize > 0 {
		data["worker_queue_size"] = in.WorkerQueueSize
	}
	if len(in.RecentFiles) > 0 {
		data["recent_files"] = in.RecentFiles
	}

	// Preserve instance ID: use incoming instance ID if provided, otherwise the existing one
	instanceID := strings.TrimSpace(in.InstanceID)
	if instanceID == "" {
		instanceID = strings.TrimSpace(old.InstanceID)
	}
	if instanceID != "" {
		data["instance_id"] = instanceID
	}

	if len(data) == 0 {
		// If there is an existing file, remove it to reflect defaults-only state
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// AddRecentFile moves file to the front of the recent list, dropping
// duplicates and trimming to MaxRecentFiles, and persists the result.
func (s *SettingsService) AddRecentFile(file string) ([]string, error) {
	current, err := s.GetSettings()
	if err != nil {
		return nil, err
	}
	current.RecentFiles = PushRecent(current.RecentFiles, file, current.MaxRecentFiles)
	if err := s.SaveSettings(current); err != nil {
		return nil, err
	}
	return current.RecentFiles, nil
}

// ClearRecentFiles empties the recent list
func (s *SettingsService) ClearRecentFiles() error {
	current, err := s.GetSettings()
	if err != nil {
		return err
	}
	current.RecentFiles = nil
	return s.SaveSettings(current)
}

// PushRecent returns files with file moved to the front, at most limit long
func PushRecent(files []string, file string, limit int) []string {
	out := make([]string, 0, len(files)+1)
	out = append(out, file)
	for _, f := range files {
		if f != file {
			out = append(out, f)
		}
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// EnsureInstanceID returns the stored instance ID, generating and saving a
// new one on first use.
func (s *SettingsService) EnsureInstanceID() (string, error) {
	current, err := s.GetSettings()
	if err != nil {
		return "", err
	}
	if current.InstanceID != "" {
		return current.InstanceID, nil
	}
	current.InstanceID = uuid.NewString()
	if err := s.SaveSettings(current); err != nil {
		return "", err
	}
	return current.InstanceID, nil
}
