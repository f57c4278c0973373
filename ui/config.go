package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	GlamourMaxWidth uint
	EnableMouse     bool

	// Voice is "female" or "male".
	Voice string

	// Looping playback waits this many milliseconds between repeats.
	LoopDelayMillis int

	// Slow playback rate, 0 < rate < 1.
	SlowRate float64

	// For debugging the UI
	GlamourEnabled bool `env:"KOTOBA_ENABLE_GLAMOUR" envDefault:"true"`
}
