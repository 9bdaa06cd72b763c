// Package log defines the logger used across gpunexus.
//
// Components accept any [Logger]; [Noop] discards everything and is the default
// when nothing is configured.
package log

// Kv is a set of structured key-value pairs attached to a logger.
type Kv = map[string]any

// Logger is the logging interface.
type Logger interface {
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	WithValues(values Kv) Logger
}

// Noop is a logger that discards all output.
var Noop Logger = noop{}

type noop struct{}

func (noop) Infof(string, ...any)    {}
func (noop) Warningf(string, ...any) {}
func (noop) Errorf(string, ...any)   {}
func (noop) Debugf(string, ...any)   {}
func (n noop) WithValues(Kv) Logger  { return n }
