package journal

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dynkit/retype/internal/object"
)

// Recorder adapts a Store into an object.Hook. Hooks run inline on
// the invoking goroutine, so append failures are counted instead of
// propagated back into the protocol.
type Recorder struct {
	store   Store
	dropped atomic.Uint64
}

// NewRecorder creates a hook that appends every event to store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Dropped reports how many events failed to persist.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

func (r *Recorder) append(e Entry) {
	if err := r.store.Append(context.Background(), e); err != nil {
		r.dropped.Add(1)
	}
}

func (r *Recorder) OnCapture(ev object.CaptureEvent) {
	r.append(Entry{
		Kind:   KindCapture,
		Class:  ev.Class,
		Method: "init",
		To:     ev.Instance,
		Detail: fmt.Sprintf("args=%d kwargs=%d", ev.Args, ev.Kwargs),
	})
}

func (r *Recorder) OnInvoke(ev object.InvokeEvent) {
	e := Entry{
		Kind:     KindInvoke,
		Class:    ev.Class,
		Method:   ev.Name,
		Duration: ev.Duration,
	}
	if ev.Err != nil {
		e.Outcome = object.OutcomeFailed
		e.Detail = ev.Err.Error()
	}
	r.append(e)
}

func (r *Recorder) OnUpgrade(ev object.UpgradeEvent) {
	e := Entry{
		Kind:     KindUpgrade,
		Class:    ev.Declared,
		Method:   ev.Method,
		From:     ev.From,
		To:       ev.To,
		Outcome:  ev.Outcome,
		Duration: ev.Duration,
	}
	if ev.Err != nil {
		e.Detail = ev.Err.Error()
	}
	r.append(e)
}

func (r *Recorder) OnMigrate(ev object.MigrateEvent) {
	e := Entry{
		Kind:    KindMigrate,
		Method:  ev.Attr,
		From:    ev.From,
		To:      ev.To,
		Outcome: ev.Outcome,
	}
	if ev.Err != nil {
		e.Detail = ev.Err.Error()
	}
	r.append(e)
}
