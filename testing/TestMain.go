// Package testing is blank-imported by binary tests. The import marks the
// process as a test run so that main returns without opening connections.
package testing

import (
	"os"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
)

func init() {
	if err := os.Setenv(app.TestModeEnv, "1"); err != nil {
		panic(err)
	}
}
