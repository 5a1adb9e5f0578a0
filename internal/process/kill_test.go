package process

// Notes:
// - KillProcessGroup/TerminateProcessGroup: we only call them with an invalid
//   PID to verify they don't panic. Real signal delivery is covered by the
//   timeout tests in process_test.go, which spawn their own process groups.
// - Cannot test with PID 0 (signals the current process group).

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

func TestTerminateProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	TerminateProcessGroup(999999999)
}
