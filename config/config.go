// Package config loads viper-backed TOML defaults for the propagator,
// Q-Law, and segment-solving parameters that elsewhere must be supplied
// explicitly by callers: an environment variable names a directory, a
// config.toml is read out of it, and the result is cached behind a
// lazily-loaded singleton. Load falls back to Defaults() on a missing
// environment variable or unreadable file so the rest of the module works
// out of the box with no configuration file at all -- this is a library,
// not a CLI.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/open-space-collective/open-space-toolkit-astrodynamics-sub001/astrocore"
)

// configDirEnvVar names the environment variable pointing at the
// directory holding config.toml, mirroring config.go's SMD_CONFIG.
const configDirEnvVar = "ASTROCORE_CONFIG"

// Propagator holds the adaptive/fixed-step tolerances and bounds a
// caller would otherwise have to supply by hand to every
// astrocore.Propagator and integrator.RKF78.
type Propagator struct {
	AbsoluteTolerance  float64
	RelativeTolerance  float64
	MinStepSeconds     float64
	MaxStepSeconds     float64
	SafetyFactor       float64
	BisectionTolerance float64
	CentralBody        string
}

// QLaw holds the Q-function shape parameters and default effectivity
// thresholds (m=3, n=4, r=2, the conventional Petropoulos exponents).
type QLaw struct {
	M, N, R                int
	B                      float64
	K                      int
	PeriapsisWeight        float64
	MinimumPeriapsisRadius float64

	AbsoluteEffectivityThreshold float64
	RelativeEffectivityThreshold float64
}

// Segment holds default maneuver constraint values (a one-minute minimum
// maneuver duration, 30 minutes of separation between maneuvers). The
// segment package does not read them: a segment.Constraints applies only
// the fields its caller sets.
type Segment struct {
	MinimumDurationSeconds   float64
	MinimumSeparationSeconds float64
}

// Config is the top-level configuration tree.
type Config struct {
	Propagator Propagator
	QLaw       QLaw
	Segment    Segment
}

// Defaults returns the configuration this module ships with when no
// config.toml is found: integrator.NewRKF78's 1e-6/3600 step bounds and
// 0.9 safety factor, astrocore.Propagator's 1e-6 s bisection tolerance
// default, and the m=3/n=4/r=2/b=0.01/k=100 Q-function shape parameters.
func Defaults() Config {
	return Config{
		Propagator: Propagator{
			AbsoluteTolerance:  1e-9,
			RelativeTolerance:  1e-9,
			MinStepSeconds:     1e-6,
			MaxStepSeconds:     3600,
			SafetyFactor:       0.9,
			BisectionTolerance: 1e-6,
			CentralBody:        "Earth",
		},
		QLaw: QLaw{
			M: 3, N: 4, R: 2,
			B: 0.01,
			K: 100,
			PeriapsisWeight:              1.0,
			MinimumPeriapsisRadius:        6578.1363e3,
			AbsoluteEffectivityThreshold:  0.0,
			RelativeEffectivityThreshold:  0.0,
		},
		Segment: Segment{
			MinimumDurationSeconds:   60,
			MinimumSeparationSeconds: 1800,
		},
	}
}

var (
	cfgLoaded bool
	cfg       Config
)

// Load returns the cached Config, reading it from config.toml in the
// directory named by ASTROCORE_CONFIG on first call. A missing
// environment variable, missing file, or malformed file is not fatal --
// Load logs nothing and silently falls back to Defaults(), since every
// field it can set already has a workable default.
func Load() Config {
	if cfgLoaded {
		return cfg
	}

	cfg = Defaults()
	cfgLoaded = true

	confPath := os.Getenv(configDirEnvVar)
	if confPath == "" {
		return cfg
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return cfg
	}

	if v.IsSet("propagator.absolute_tolerance") {
		cfg.Propagator.AbsoluteTolerance = v.GetFloat64("propagator.absolute_tolerance")
	}
	if v.IsSet("propagator.relative_tolerance") {
		cfg.Propagator.RelativeTolerance = v.GetFloat64("propagator.relative_tolerance")
	}
	if v.IsSet("propagator.min_step_seconds") {
		cfg.Propagator.MinStepSeconds = v.GetFloat64("propagator.min_step_seconds")
	}
	if v.IsSet("propagator.max_step_seconds") {
		cfg.Propagator.MaxStepSeconds = v.GetFloat64("propagator.max_step_seconds")
	}
	if v.IsSet("propagator.safety_factor") {
		cfg.Propagator.SafetyFactor = v.GetFloat64("propagator.safety_factor")
	}
	if v.IsSet("propagator.bisection_tolerance") {
		cfg.Propagator.BisectionTolerance = v.GetFloat64("propagator.bisection_tolerance")
	}
	if v.IsSet("propagator.central_body") {
		cfg.Propagator.CentralBody = v.GetString("propagator.central_body")
	}

	if v.IsSet("qlaw.m") {
		cfg.QLaw.M = v.GetInt("qlaw.m")
	}
	if v.IsSet("qlaw.n") {
		cfg.QLaw.N = v.GetInt("qlaw.n")
	}
	if v.IsSet("qlaw.r") {
		cfg.QLaw.R = v.GetInt("qlaw.r")
	}
	if v.IsSet("qlaw.b") {
		cfg.QLaw.B = v.GetFloat64("qlaw.b")
	}
	if v.IsSet("qlaw.k") {
		cfg.QLaw.K = v.GetInt("qlaw.k")
	}
	if v.IsSet("qlaw.periapsis_weight") {
		cfg.QLaw.PeriapsisWeight = v.GetFloat64("qlaw.periapsis_weight")
	}
	if v.IsSet("qlaw.minimum_periapsis_radius") {
		cfg.QLaw.MinimumPeriapsisRadius = v.GetFloat64("qlaw.minimum_periapsis_radius")
	}
	if v.IsSet("qlaw.absolute_effectivity_threshold") {
		cfg.QLaw.AbsoluteEffectivityThreshold = v.GetFloat64("qlaw.absolute_effectivity_threshold")
	}
	if v.IsSet("qlaw.relative_effectivity_threshold") {
		cfg.QLaw.RelativeEffectivityThreshold = v.GetFloat64("qlaw.relative_effectivity_threshold")
	}

	if v.IsSet("segment.minimum_duration_seconds") {
		cfg.Segment.MinimumDurationSeconds = v.GetFloat64("segment.minimum_duration_seconds")
	}
	if v.IsSet("segment.minimum_separation_seconds") {
		cfg.Segment.MinimumSeparationSeconds = v.GetFloat64("segment.minimum_separation_seconds")
	}

	return cfg
}

// Reset clears the cached Config, forcing the next Load to re-read
// ASTROCORE_CONFIG. Exists for tests that set the environment variable
// per-case.
func Reset() {
	cfgLoaded = false
	cfg = Config{}
}

// CentralBody resolves the configured central body name to an
// astrocore.CelestialObject, returning an error if it does not name one
// of the predefined bodies.
func (c Config) CentralBody() (astrocore.CelestialObject, error) {
	return astrocore.CelestialObjectFromString(c.Propagator.CentralBody)
}
