// Package guard flips the application into test mode when blank-imported
// from a test file, so mains and init-time side effects stay dormant.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PETROFLOW_TEST_MODE") == "" {
			_ = os.Setenv("PETROFLOW_TEST_MODE", "1")
		}
	})
}
