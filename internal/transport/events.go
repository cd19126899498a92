package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventEmitter pushes named events to the frontend
type EventEmitter interface {
	Emit(event string, data ...any)
}

type wailsEmitter struct {
	ctx context.Context
}

// NewWailsEmitter emits through the Wails runtime. ctx must be the context
// Wails passed to OnStartup.
func NewWailsEmitter(ctx context.Context) EventEmitter {
	return &wailsEmitter{ctx: ctx}
}

func (e *wailsEmitter) Emit(event string, data ...any) {
	wailsruntime.EventsEmit(e.ctx, event, data...)
}
