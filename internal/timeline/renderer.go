package timeline

// Renderer is the temporal engine a controller drives.
// All calls are fire-and-forget.
type Renderer interface {
	TimelineStart(speed float64)
	TimelinePause()
	TimelineSeek(position float64)
	TimelineReset()
}
