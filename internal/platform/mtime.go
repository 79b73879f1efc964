package platform

import (
	"fmt"
	"os"
	"time"
)

// statMtime returns path's modification time. Extension hot-reload polling
// (pkg/extreg) compares this against the last-seen value to detect a
// rebuilt library.
func statMtime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("platform: stat %q: %w", path, err)
	}
	return info.ModTime(), nil
}
