package downsample

// SettleFrames is how many frames fast mode lingers after interaction stops.
const SettleFrames = 10

// AdaptiveDownsampler switches to nth-point sampling while the user drags or
// zooms and returns to LTTB once the view has been still for SettleFrames
// calls. It is driven once per frame by the interactive goroutine.
type AdaptiveDownsampler struct {
	interacting bool
	settle      int
}

// NewAdaptiveDownsampler returns a settled downsampler.
func NewAdaptiveDownsampler() *AdaptiveDownsampler {
	return &AdaptiveDownsampler{}
}

// Downsample reduces points to target, choosing the algorithm from the
// interaction state. Series that already fit are copied unchanged and do not
// advance the state.
func (d *AdaptiveDownsampler) Downsample(points []Point, target int, dragging bool) []Point {
	if len(points) <= target {
		return append([]Point(nil), points...)
	}

	switch {
	case dragging:
		d.interacting = true
		d.settle = SettleFrames
		return NthPoint(points, target)
	case d.settle > 0:
		d.settle--
		return NthPoint(points, target)
	default:
		d.interacting = false
		return LTTB(points, target)
	}
}

// IsFastMode reports whether the last call used, or the next call will use,
// the nth-point path.
func (d *AdaptiveDownsampler) IsFastMode() bool {
	return d.interacting || d.settle > 0
}

// ForceSettle returns to LTTB immediately, e.g. after new data is loaded.
func (d *AdaptiveDownsampler) ForceSettle() {
	d.interacting = false
	d.settle = 0
}
