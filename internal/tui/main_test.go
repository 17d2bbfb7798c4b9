package tui

import (
	"testing"

	"go.uber.org/goleak"
)

// Commands run synchronously in these tests, so nothing may outlive them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
