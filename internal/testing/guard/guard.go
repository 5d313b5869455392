// Package guard forces test mode for any test binary that imports it, so
// main packages never open real connections under go test.
package guard

import (
	"os"
	"sync"
)

const testModeEnv = "SUPPLIERS_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(testModeEnv) == "" {
			_ = os.Setenv(testModeEnv, "1")
		}
	})
}
