package astrocore

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// NewLogger returns a logfmt logger tagged with the given component name,
// matching spacecraft.go's SCLogInit idiom generalized from "spacecraft" to
// any core component (orbit construction, Kepler propagation, segment
// solve, Q-Law decisions).
func NewLogger(component string) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return kitlog.With(logger, "subsys", component)
}

// NopLogger returns a logger that discards everything, the default for
// library code that hasn't been given one explicitly.
func NopLogger() kitlog.Logger {
	return kitlog.NewNopLogger()
}
