package fishflow

import(
	"fmt"
	"log"
	"strings"
)

// Logf is where the package sends its diagnostics. It defaults to
// log.Printf; SetLogger can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Verbosity controls how chatty a run is.
type Verbosity int

const(
	Quiet Verbosity = iota
	Low
	Normal
	High
	Debug
)

var verbosityNames = []string{"Quiet", "Low", "Normal", "High", "Debug"}

func (v Verbosity)String() string {
	if v < Quiet || int(v) >= len(verbosityNames) {
		return fmt.Sprintf("Verbosity(%d)", int(v))
	}
	return verbosityNames[v]
}

// UnmarshalYAML accepts either the level number or its name.
func (v *Verbosity)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		*v = Verbosity(n)
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	for i, name := range verbosityNames {
		if strings.EqualFold(s, name) {
			*v = Verbosity(i)
			return nil
		}
	}
	return fmt.Errorf("verbosity '%s': %w", s, ErrInvalidConfiguration)
}

func (v Verbosity)MarshalYAML() (interface{}, error) {
	if v < Quiet || int(v) >= len(verbosityNames) {
		return int(v), nil
	}
	return v.String(), nil
}

// LogAt logs only if the configured verbosity reaches level.
func (c Config)LogAt(level Verbosity, format string, args ...interface{}) {
	if c.Verbosity >= level {
		Logf(format, args...)
	}
}
