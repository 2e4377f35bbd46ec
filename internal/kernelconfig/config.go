// Package kernelconfig loads the boot-time tunables a real kernel would
// otherwise fix at compile time (process table size, CPU count, the
// signal queue's capacity, the tick rate) from an optional TOML file,
// falling back to reasonable compiled-in defaults.
package kernelconfig

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
)

// Config is the full set of boot tunables. Zero-value fields are invalid;
// use Default() and override only what a config file specifies.
type Config struct {
	NPROC      int `toml:"nproc"`
	NCPU       int `toml:"ncpu"`
	// MaxSignals is recorded and validated but not applied: the signal
	// queue's capacity is a compile-time array bound (signal.MaxSignals),
	// unlike proc.Table's runtime-sized NPROC. A config file that disagrees
	// with the compiled-in value fails Validate rather than being silently
	// ignored.
	MaxSignals     int     `toml:"max_signals"`
	TicksPerSecond int     `toml:"ticks_per_second"`
	TickPeriod     tomlDur `toml:"tick_period"`
}

// Default returns the compiled-in defaults: 64 process slots, 8 CPUs, a
// 512-entry signal queue capacity (511 usable, per signal.MaxSignals), and
// a 10Hz tick rate, with NCPU and the tick period chosen to give this
// simulation a reasonable multicore/real-time feel.
func Default() Config {
	return Config{
		NPROC:          64,
		NCPU:           8,
		MaxSignals:     512,
		TicksPerSecond: 10,
		TickPeriod:     tomlDur{10 * time.Millisecond},
	}
}

// Load reads a TOML file at path and overlays it on Default(). A missing
// or unreadable file is an error; callers that want to boot with pure
// defaults should call Default() directly instead of Load.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("kernelconfig: %w", err)
	}
	return cfg, nil
}

// Validate reports the first tunable that is out of range.
func (c Config) Validate() error {
	switch {
	case c.NPROC <= 0:
		return fmt.Errorf("kernelconfig: nproc must be positive, got %d", c.NPROC)
	case c.NCPU <= 0:
		return fmt.Errorf("kernelconfig: ncpu must be positive, got %d", c.NCPU)
	case c.MaxSignals != signal.MaxSignals:
		return fmt.Errorf("kernelconfig: max_signals is compiled in as %d, config requested %d", signal.MaxSignals, c.MaxSignals)
	case c.TicksPerSecond <= 0:
		return fmt.Errorf("kernelconfig: ticks_per_second must be positive, got %d", c.TicksPerSecond)
	case c.TickPeriod.Duration <= 0:
		return fmt.Errorf("kernelconfig: tick_period must be positive, got %s", c.TickPeriod.Duration)
	}
	return nil
}

// tomlDur lets tick_period be written as a Go duration string ("10ms") in
// the config file rather than a raw nanosecond count.
type tomlDur struct{ time.Duration }

func (d *tomlDur) UnmarshalTOML(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("kernelconfig: tick_period must be a duration string, got %T", v)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
