package runner

import (
	"errors"
	"math"

	"github.com/shirou/gopsutil/v3/process"
)

// isProcessRunning reports whether a process with the given pid appears to be
// running. It is intentionally conservative on errors: an inspection failure
// counts as running so a leaked simulator child is never silently ignored.
func isProcessRunning(pid int) bool {
	if pid <= 0 || pid > math.MaxInt32 {
		return false
	}

	exists, err := process.PidExists(int32(pid))
	if err == nil {
		return exists
	}
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return false
	}
	return true
}
