package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"vidgen/internal/config"
	"vidgen/internal/gateway"
	"vidgen/internal/journal"
	"vidgen/internal/services"
	"vidgen/internal/session"
)

// CheckRenderService verifies that the render service answers a catalog call.
// It uses a 5-second timeout and a single attempt.
func CheckRenderService(ctx context.Context, cfg *config.Config) Result {
	const name = "Render service"

	client, err := gateway.NewFromConfig(cfg, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	transitions, err := client.ListTransitions(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", client.BaseURL(), summarizeGatewayError(err))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d transitions)", client.BaseURL(), len(transitions))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist; run 'vidgen config init')", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckJournal opens the submission journal and verifies its schema.
func CheckJournal(cfg *config.Config) Result {
	const name = "Journal"

	j, err := journal.Open(cfg)
	if err != nil {
		if errors.Is(err, journal.ErrSchemaMismatch) {
			return Result{Name: name, Detail: "schema mismatch (run 'vidgen history clear' or delete the database)"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	defer j.Close()
	return Result{Name: name, Passed: true, Detail: j.Path()}
}

// CheckSessionLock reports whether another process holds the session lock.
// A held lock is not a failure.
func CheckSessionLock(cfg *config.Config) Result {
	const name = "Session lock"

	lock, err := session.Acquire(cfg, nil)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionActive) {
			return Result{Name: name, Passed: true, Detail: "held by another vidgen process"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	lock.Release()
	return Result{Name: name, Passed: true, Detail: "free"}
}

func summarizeGatewayError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "unreachable"
	}
	if code := gateway.StatusCode(err); code != 0 {
		return fmt.Sprintf("HTTP %d", code)
	}
	return err.Error()
}
