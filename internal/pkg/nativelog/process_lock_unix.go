//go:build unix

package nativelog

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// withProcessLogLock serializes writers across processes sharing dir with an
// advisory flock on a sidecar lock file.
func withProcessLogLock(dir string, fn func() error) error {
	f, err := os.OpenFile(filepath.Join(dir, ".lock"), os.O_CREATE|os.O_RDWR, defaultLogFilePerm)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return err
	}
	defer func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	}()
	return fn()
}
