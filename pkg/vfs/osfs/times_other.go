//go:build !linux

package osfs

import (
	"os"
	"time"
)

// statAllTimes falls back to ModTime for all three timestamps on
// platforms without a directly exposed birth/access time in this
// backend's supported build set.
func statAllTimes(native string) (time.Time, time.Time, time.Time, error) {
	info, err := os.Stat(native)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	return info.ModTime(), info.ModTime(), info.ModTime(), nil
}
