package object

import "time"

// Event outcomes shared by hooks, the journal and metrics.
const (
	OutcomeUpgraded = "upgraded"
	OutcomeFailed   = "failed"
	OutcomeCopied   = "copied"
	OutcomeSkipped  = "skipped"
)

// CaptureEvent: a construction record was attached to an instance.
type CaptureEvent struct {
	Instance string // instance id when the receiver is an Instance
	Class    string // owner class name
	Args     int    // captured positional count
	Kwargs   int    // captured keyword count
}

// InvokeEvent: a wrapped callable ran.
type InvokeEvent struct {
	Wrapper  ObjectType // INIT_CAPTURE_OBJ or METHOD_REBINDER_OBJ
	Name     string     // wrapped callable name
	Class    string     // owner class name, empty for free calls
	Duration time.Duration
	Err      error
}

// UpgradeEvent: a mismatched factory result was rebuilt as the
// accessing class (or the attempt failed).
type UpgradeEvent struct {
	Method   string
	From     string // raw result class
	To       string // accessing class
	Declared string
	Outcome  string
	Duration time.Duration
	Err      error
}

// MigrateEvent: one attribute was copied (or not) from the receiver to
// the upgraded instance.
type MigrateEvent struct {
	Attr    string
	From    string // receiver id
	To      string // upgraded instance id
	Outcome string
	Err     error
}

// Hook observes the wrapper protocol. Implementations must be safe for
// concurrent use; they run inline on the invoking goroutine.
type Hook interface {
	OnCapture(CaptureEvent)
	OnInvoke(InvokeEvent)
	OnUpgrade(UpgradeEvent)
	OnMigrate(MigrateEvent)
}

// BaseHook is a no-op Hook for embedding, so implementations override
// only the events they care about.
type BaseHook struct{}

func (BaseHook) OnCapture(CaptureEvent) {}
func (BaseHook) OnInvoke(InvokeEvent)   {}
func (BaseHook) OnUpgrade(UpgradeEvent) {}
func (BaseHook) OnMigrate(MigrateEvent) {}
