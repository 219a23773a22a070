// Package driver abstracts the browser-side collaborators that act on and
// observe the target application. The facade talks to a Driver; the concrete
// implementations are an HTTP bridge to a real browser-automation service and
// a deterministic in-memory stub for offline runs and tests.
package driver

import (
	"context"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
)

// Driver executes actions against the target application and reports its
// observable state. Implementations must be safe to call from a single
// training loop goroutine; concurrent use is not required.
type Driver interface {
	// Login authenticates the driven session. Called once from Reset when
	// the environment is configured with credentials.
	Login(ctx context.Context) error

	// Navigate points the session at a path under the configured base URL.
	Navigate(ctx context.Context, path string) error

	// ExecuteAction performs one action. The boolean reports whether the
	// application accepted the action; an error means the driver itself
	// failed and the step's observation is unavailable.
	ExecuteAction(ctx context.Context, spec action.Spec) (bool, error)

	// Observe captures the application state in the requested mode.
	Observe(ctx context.Context, mode observe.Mode) (observe.Observation, error)

	// CurrentURL reports the session's current location, used to detect
	// navigation off the application.
	CurrentURL(ctx context.Context) (string, error)

	// Close releases the underlying session.
	Close() error
}
