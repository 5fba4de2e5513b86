package app

import (
	"os"
	"sync/atomic"
)

// TestModeEnv set to "1" makes cmd/odyssey-admin return before it dials
// Postgres or Redis. Importing the module's testing package sets it.
const TestModeEnv = "ODYSSEY_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether the binary runs under go test. The environment
// is read once and cached.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode reads the environment again and returns the new value.
func RefreshTestMode() bool {
	v := os.Getenv(TestModeEnv) == "1"
	testMode.Store(&v)
	return v
}
