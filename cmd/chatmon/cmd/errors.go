package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/chatmon/internal/adapters/socket"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when the stats database is locked. It distinguishes a running daemon, a
// stale socket and an unknown lock holder.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "stats database is locked by the running daemon\n" +
			"  → stop it first:  chatmon daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("stats database is locked; daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'chatmon daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "stats database is locked by another process\n" +
		"  → find the process:  ps aux | grep chatmon\n" +
		"  → kill it:           kill <PID>\n" +
		"  → or run with CHATMON_STATS=false"
}
