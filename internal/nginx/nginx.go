// Package nginx wraps the external proxy's syntax checker and reload
// signal behind narrow interfaces.
//
// Both calls are blocking child-process invocations with no timeout of
// their own, so each is run under an explicit deadline; expiry counts
// as failure. The checker always validates the full on-disk
// configuration set, since cross-file directives can be affected by a
// single artifact.
package nginx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ovanta/sitectl/internal/errors"
	"github.com/ovanta/sitectl/internal/executor"
	"github.com/ovanta/sitectl/internal/logger"
)

// SyntaxChecker validates the full configuration tree. A non-nil error
// carries the checker's diagnostic text verbatim.
type SyntaxChecker interface {
	Check(ctx context.Context) error
}

// ReloadTrigger asks the live proxy to reload its configuration
// without dropping connections. Only ever invoked after a successful
// syntax check.
type ReloadTrigger interface {
	Reload(ctx context.Context) error
}

// Checker runs nginx -t.
type Checker struct {
	exec    executor.CommandExecutor
	timeout time.Duration
}

// NewChecker creates a Checker with the given command timeout.
func NewChecker(exec executor.CommandExecutor, timeout time.Duration) *Checker {
	return &Checker{exec: exec, timeout: timeout}
}

// Check validates the full configuration set. On failure the error
// message is the checker's own output, preserved for the operator.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.exec.Execute(ctx, "nginx", "-t")
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeChecker, "syntax check timed out", ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("%s", strings.TrimSpace(string(output)))
	}
	logger.Debug("syntax check passed")
	return nil
}

// Reloader signals nginx to reload.
type Reloader struct {
	exec    executor.CommandExecutor
	timeout time.Duration
}

// NewReloader creates a Reloader with the given command timeout.
func NewReloader(exec executor.CommandExecutor, timeout time.Duration) *Reloader {
	return &Reloader{exec: exec, timeout: timeout}
}

// Reload asks nginx to apply the configuration. systemctl is tried
// first, nginx -s reload as fallback.
func (r *Reloader) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sysOutput, err := r.exec.Execute(ctx, "systemctl", "reload", "nginx")
	if err == nil {
		return nil
	}
	logger.Debug("systemctl reload failed, trying nginx -s reload: %v: %s",
		err, strings.TrimSpace(string(sysOutput)))

	output, err := r.exec.Execute(ctx, "nginx", "-s", "reload")
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeReload, "reload timed out", ctx.Err())
	}
	if err != nil {
		// Keep both attempts' diagnostics, the systemctl output often
		// names the actual unit failure.
		return errors.Wrap(errors.ErrCodeReload, "failed to reload nginx",
			fmt.Errorf("systemctl: %s; nginx: %s",
				strings.TrimSpace(string(sysOutput)), strings.TrimSpace(string(output))))
	}
	return nil
}
