package usecase

import (
	"context"
	"io/fs"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// IsFatal reports whether err should stop the whole run rather than just the
// short it came from: cancellation, a missing tool binary or a full disk.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, syscall.ENOSPC) {
		return true
	}
	var pe *fs.PathError
	return errors.As(err, &pe) && pe.Op == "fork/exec"
}
