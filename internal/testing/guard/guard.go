package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("ORDERDESK_TEST_MODE") == "" {
			_ = os.Setenv("ORDERDESK_TEST_MODE", "1")
		}
	})
}
