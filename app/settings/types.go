package settings

// Settings holds application settings that can be overridden by the user.
type Settings struct {
	// Series with more points than this are downsampled before drawing
	DownsampleThreshold int `yaml:"downsample_threshold" json:"downsample_threshold"`
	// Point budget handed to LTTB
	LttbTargetPoints int `yaml:"lttb_target_points" json:"lttb_target_points"`
	// Capacity of the zoom-quantized downsample cache, in series
	ZoomCacheMaxEntries int `yaml:"zoom_cache_max_entries" json:"zoom_cache_max_entries"`
	HistogramBins       int `yaml:"histogram_bins" json:"histogram_bins"`
	MaxRecentFiles      int `yaml:"max_recent_files" json:"max_recent_files"`
	// Capacity of each background worker channel
	WorkerQueueSize int `yaml:"worker_queue_size" json:"worker_queue_size"`
	// Most recently opened first
	RecentFiles []string `yaml:"recent_files,omitempty" json:"recent_files,omitempty"`
	// InstanceID is a unique identifier for this installation
	InstanceID string `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`
}

// SettingsFileName is the file looked up next to the executable
const SettingsFileName = "spcplot.yml"

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	DownsampleThreshold: 5000,
	LttbTargetPoints:    5000,
	ZoomCacheMaxEntries: 100,
	HistogramBins:       20,
	MaxRecentFiles:      10,
	WorkerQueueSize:     64,
	RecentFiles:         []string{},
}

// DefaultSettings returns a copy of the built-in defaults
func DefaultSettings() Settings {
	s := defaultSettings
	s.RecentFiles = []string{}
	return s
}
