package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GetEffectiveSettings returns the settings stored next to the executable
// overlaid on the defaults. If anything goes wrong, it returns defaults.
func GetEffectiveSettings() Settings {
	path, err := settingsFilePath()
	if err != nil {
		return DefaultSettings()
	}
	s, err := loadSettings(path)
	if err != nil {
		return DefaultSettings()
	}
	return s
}

// loadSettings overlays the file at path onto the defaults. A missing file
// yields the defaults without error.
func loadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}
	// Unmarshal into a generic map to detect key presence
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings, err
	}
	overlay(&settings, m)
	return settings, nil
}

// overlay copies every recognised, well-typed and in-range key of m
func overlay(settings *Settings, m map[string]any) {
	if vi, ok := intValue(m, "downsample_threshold"); ok && vi >= 100 {
		settings.DownsampleThreshold = vi
	}
	if vi, ok := intValue(m, "lttb_target_points"); ok && vi >= 3 {
		settings.LttbTargetPoints = vi
	}
	if vi, ok := intValue(m, "zoom_cache_max_entries"); ok && vi >= 1 {
		settings.ZoomCacheMaxEntries = vi
	}
	if vi, ok := intValue(m, "histogram_bins"); ok && vi >= 1 {
		settings.HistogramBins = vi
	}
	if vi, ok := intValue(m, "max_recent_files"); ok && vi >= 0 {
		settings.MaxRecentFiles = vi
	}
	if vi, ok := intValue(m, "worker_queue_size"); ok && vi >= 1 {
		settings.WorkerQueueSize = vi
	}
	if v, ok := m["recent_files"]; ok {
		if items, ok := v.([]any); ok {
			files := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok && s != "" {
					files = append(files, s)
				}
			}
			settings.RecentFiles = files
		}
	}
	if v, ok := m["instance_id"]; ok {
		if vs, oks := v.(string); oks {
			settings.InstanceID = vs
		}
	}
}

func intValue(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	vi, ok := v.(int)
	return vi, ok
}

func settingsFilePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), SettingsFileName), nil
}
