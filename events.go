package kaleido

// Observers is the callback table through which the stage notifies external
// subsystems (UI, previews) of structural events. Set the Observers field on
// a Stage before use; nil callbacks are skipped. Events carry no payload
// beyond the callback itself; observers read current state off the stage.
type Observers struct {
	// Resize fires after a resize has fully propagated to scenes, the
	// composer, and the backing buffers.
	Resize func()
	// Zoom fires on every SetZoom call, whether or not the level changed.
	Zoom func()
}

func (o Observers) notifyResize() {
	if o.Resize != nil {
		o.Resize()
	}
}

func (o Observers) notifyZoom() {
	if o.Zoom != nil {
		o.Zoom()
	}
}
