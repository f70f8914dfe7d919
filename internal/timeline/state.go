package timeline

import "github.com/llehouerou/graphtime/internal/epoch"

// State is a snapshot of a controller.
type State struct {
	Playing  bool
	Position float64 // normalized, 0..1
	Speed    float64
	// Raw is the latest cutoff reported by the renderer.
	Raw epoch.Cutoff
	// Committed is the cutoff currently displayed. It is always a value
	// Raw held at some point.
	Committed epoch.Cutoff
}
