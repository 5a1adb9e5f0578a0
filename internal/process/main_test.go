package process

import (
	"testing"

	"go.uber.org/goleak"
)

// Every run must leave no stream or wait goroutine behind, including runs
// that ended on timeout.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
