package downsample

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"spcplot/app/table"
)

// Tier is a precomputed level of detail for very large series.
type Tier int

const (
	TierRaw Tier = iota
	TierHigh
	TierMedium
	TierLow
)

// String returns the string representation of Tier
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "raw"
	}
}

// TargetPoints returns the point budget of the tier; Raw has none.
func (t Tier) TargetPoints() (int, bool) {
	switch t {
	case TierHigh:
		return 100_000, true
	case TierMedium:
		return 10_000, true
	case TierLow:
		return 1_000, true
	default:
		return 0, false
	}
}

// Suffix is the file stem used for the tier.
func (t Tier) Suffix() string {
	switch t {
	case TierHigh:
		return "lod_100k"
	case TierMedium:
		return "lod_10k"
	case TierLow:
		return "lod_1k"
	default:
		return "raw"
	}
}

// ComputedTiers lists every tier that is written to disk, coarsest first.
var ComputedTiers = []Tier{TierLow, TierMedium, TierHigh}

// TierForZoom picks a tier from visible range / total range.
func TierForZoom(ratio float64) Tier {
	switch {
	case ratio > 0.5:
		return TierLow
	case ratio > 0.1:
		return TierMedium
	case ratio > 0.01:
		return TierHigh
	default:
		return TierRaw
	}
}

// TierPath returns the file a tier is stored in under dir.
func TierPath(dir string, tier Tier) string {
	return filepath.Join(dir, tier.Suffix()+".parquet")
}

// GenerateLODTiers downsamples points with LTTB into every computed tier
// smaller than the series and writes each to a Parquet file in dir with the
// columns xName and yName. It returns the written paths.
func GenerateLODTiers(ctx context.Context, points []Point, dir, xName, yName string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create LOD directory: %w", err)
	}

	var paths []string
	for _, tier := range ComputedTiers {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		target, _ := tier.TargetPoints()
		if len(points) <= target {
			continue
		}

		reduced := LTTB(points, target)
		xs := make([]float64, len(reduced))
		ys := make([]float64, len(reduced))
		for i, p := range reduced {
			xs[i], ys[i] = p.X, p.Y
		}

		path := TierPath(dir, tier)
		if err := table.WriteFloatParquet(path, []string{xName, yName}, [][]float64{xs, ys}); err != nil {
			return paths, fmt.Errorf("failed to write %s tier: %w", tier, err)
		}
		log.Printf("[LOD_GENERATE] %s: %d -> %d points", filepath.Base(path), len(points), len(reduced))
		paths = append(paths, path)
	}
	return paths, nil
}

// AvailableTiers scans dir for tier files. Raw is always available.
func AvailableTiers(dir string) ([]Tier, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "lod_*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	tiers := []Tier{TierRaw}
	for _, m := range matches {
		stem := strings.TrimSuffix(filepath.Base(m), ".parquet")
		for _, tier := range ComputedTiers {
			if tier.Suffix() == stem {
				tiers = append(tiers, tier)
			}
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers, nil
}

// LoadTier reads a tier file back as points, using its first two columns as
// x and y.
func LoadTier(ctx context.Context, dir string, tier Tier) ([]Point, error) {
	tbl, err := table.Load(ctx, TierPath(dir, tier))
	if err != nil {
		return nil, err
	}
	if tbl.ColumnCount() < 2 {
		return nil, fmt.Errorf("tier %s has %d columns, need 2", tier, tbl.ColumnCount())
	}
	xs, err := tbl.ColumnAsNumeric(0)
	if err != nil {
		return nil, err
	}
	ys, err := tbl.ColumnAsNumeric(1)
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points, nil
}
