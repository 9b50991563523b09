// ABOUTME: Test utilities for creating isolated charm clients
// ABOUTME: Each client gets its own temporary badger directory
package charm

import (
	"path/filepath"
	"testing"
)

// NewTestClient returns a local client rooted in t.TempDir. The cleanup
// function closes the database; the directory is removed by the test runner.
func NewTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	c, closeFn, err := OpenLocal(filepath.Join(t.TempDir(), AppName))
	if err != nil {
		t.Fatalf("Failed to open test library: %v", err)
	}

	cleanup := func() {
		if err := closeFn(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	}
	return c, cleanup
}
