// Package detect resolves which terminal driver controls the current
// environment. Environment variables alone are unreliable when the
// process was launched by something other than the terminal itself
// (nested multiplexers, app launchers, service managers), so resolution
// runs an ordered chain of strategies and stops at the first hit.
package detect

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tabman-dev/tabman/internal/driver"
	"github.com/tabman-dev/tabman/internal/logging"
)

var log = logging.ForComponent(logging.CompDetect)

// Strategy identifies which resolution step produced a result.
type Strategy string

const (
	StrategyEnv          Strategy = "env"
	StrategyProcessTree  Strategy = "process-tree"
	StrategyFrontmostApp Strategy = "frontmost-app"
	StrategyUserConfig   Strategy = "user-config"
	StrategyFallback     Strategy = "fallback"
)

// Result describes which driver was chosen and how. Diagnostic only;
// never persisted.
type Result struct {
	Driver   driver.Driver
	Strategy Strategy
	Detail   string
}

// Options tunes the resolver.
type Options struct {
	// MaxTreeDepth bounds the parent-process walk (default 5).
	MaxTreeDepth int

	// ProbeTimeout bounds each external query (default 3s).
	ProbeTimeout time.Duration

	// Override is an explicit driver name from user configuration,
	// consulted after the automatic strategies.
	Override string
}

// Resolver runs the strategy chain against a driver registry.
type Resolver struct {
	registry *driver.Registry
	opts     Options

	// Concurrent resolves share one flight: the process-tree and
	// frontmost probes each cost a subprocess.
	group singleflight.Group
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *driver.Registry, opts Options) *Resolver {
	if opts.MaxTreeDepth <= 0 {
		opts.MaxTreeDepth = 5
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	return &Resolver{registry: reg, opts: opts}
}

// Resolve returns the driver for the current environment. It never
// fails: the chain always ends at the fallback driver.
func (r *Resolver) Resolve(ctx context.Context) Result {
	v, _, _ := r.group.Do("resolve", func() (any, error) {
		return r.resolve(ctx), nil
	})
	return v.(Result)
}

func (r *Resolver) resolve(ctx context.Context) Result {
	// 1. Environment variables: the registry's live detection order.
	// Only a specific driver counts; the catch-all matching tells us
	// nothing about the environment.
	if d := r.registry.DetectActive(); d.Name() != r.registry.Fallback().Name() {
		res := Result{
			Driver:   d,
			Strategy: StrategyEnv,
			Detail:   fmt.Sprintf("environment signals for %s", d.Name()),
		}
		log.Debug("resolved", slog.String("strategy", string(res.Strategy)), slog.String("driver", d.Name()))
		return res
	}

	// 2. Parent process tree
	probeCtx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	name, proc, ok := walkParentDrivers(probeCtx, r.opts.MaxTreeDepth)
	cancel()
	if ok {
		if d, found := r.registry.Lookup(name); found {
			res := Result{
				Driver:   d,
				Strategy: StrategyProcessTree,
				Detail:   fmt.Sprintf("ancestor process %q", proc),
			}
			log.Debug("resolved", slog.String("strategy", string(res.Strategy)), slog.String("driver", d.Name()))
			return res
		}
	}

	// 3. Frontmost application (macOS only)
	if runtime.GOOS == "darwin" {
		probeCtx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
		bundleID := frontmostBundleID(probeCtx)
		cancel()
		if bundleID != "" && !isIDEBundle(bundleID) {
			if name, known := knownBundleDrivers[bundleID]; known {
				if d, found := r.registry.Lookup(name); found {
					res := Result{
						Driver:   d,
						Strategy: StrategyFrontmostApp,
						Detail:   fmt.Sprintf("frontmost app %s", bundleID),
					}
					log.Debug("resolved", slog.String("strategy", string(res.Strategy)), slog.String("driver", d.Name()))
					return res
				}
			}
		}
	}

	// 4. Explicit user override
	if r.opts.Override != "" {
		if d, found := r.registry.Lookup(r.opts.Override); found {
			res := Result{
				Driver:   d,
				Strategy: StrategyUserConfig,
				Detail:   fmt.Sprintf("configured terminal %q", r.opts.Override),
			}
			log.Debug("resolved", slog.String("strategy", string(res.Strategy)), slog.String("driver", d.Name()))
			return res
		}
		log.Warn("configured_terminal_unknown", slog.String("name", r.opts.Override))
	}

	// 5. Catch-all
	return Result{
		Driver:   r.registry.Fallback(),
		Strategy: StrategyFallback,
		Detail:   "no terminal signals found",
	}
}
