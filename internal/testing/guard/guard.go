package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("WARUNGPOS_TEST_MODE") == "" {
			_ = os.Setenv("WARUNGPOS_TEST_MODE", "1")
		}
	})
}
