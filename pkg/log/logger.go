package log

// Logger receives capture events. Implementations must be safe for
// concurrent use and return quickly: event delivery and the display loop
// call Log inline.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Tee returns a Logger that forwards every event to each non-nil logger in
// order. With no loggers it returns NoopLogger.
func Tee(loggers ...Logger) Logger {
	var t tee
	for _, l := range loggers {
		if l != nil {
			t = append(t, l)
		}
	}
	switch len(t) {
	case 0:
		return NoopLogger{}
	case 1:
		return t[0]
	}
	return t
}

type tee []Logger

func (t tee) Log(event Event) {
	for _, l := range t {
		l.Log(event)
	}
}
