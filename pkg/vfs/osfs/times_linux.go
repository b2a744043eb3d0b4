//go:build linux

package osfs

import (
	"time"

	"golang.org/x/sys/unix"
)

// statAllTimes returns (creation, last access, last write) for native,
// read directly from the platform stat structure since os.FileInfo only
// exposes ModTime. Linux has no true birth time in struct stat, so
// creation falls back to ctime (last inode change), the closest
// approximation the kernel offers through this call.
func statAllTimes(native string) (time.Time, time.Time, time.Time, error) {
	var stat unix.Stat_t
	if err := unix.Stat(native, &stat); err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	created := time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	accessed := time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	modified := time.Unix(stat.Mtim.Sec, stat.Mtim.Nsec)
	return created, accessed, modified, nil
}
