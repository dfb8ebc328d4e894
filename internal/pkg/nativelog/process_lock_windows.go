//go:build windows

package nativelog

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/windows"
)

var (
	logLocksMu sync.Mutex
	logLocks   = map[string]windows.Handle{}
)

// withProcessLogLock holds a named mutex derived from dir, so processes
// writing to different log directories never wait on each other.
func withProcessLogLock(dir string, fn func() error) error {
	h, err := logLockHandle(dir)
	if err != nil {
		return err
	}

	state, err := windows.WaitForSingleObject(h, windows.INFINITE)
	if err != nil {
		return err
	}
	if state != windows.WAIT_OBJECT_0 && state != windows.WAIT_ABANDONED {
		return fmt.Errorf("wait log lock for %s: state %d", dir, state)
	}
	defer func() { _ = windows.ReleaseMutex(h) }()
	return fn()
}

func logLockName(dir string) string {
	sum := fnv.New64a()
	_, _ = sum.Write([]byte(strings.ToLower(filepath.Clean(dir))))
	return fmt.Sprintf(`Global\fox-site-log-%016x`, sum.Sum64())
}

func logLockHandle(dir string) (windows.Handle, error) {
	name := logLockName(dir)
	logLocksMu.Lock()
	defer logLocksMu.Unlock()
	if h, ok := logLocks[name]; ok {
		return h, nil
	}
	ptr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	// ERROR_ALREADY_EXISTS still returns a usable handle to the shared mutex.
	h, err := windows.CreateMutex(nil, false, ptr)
	if h == 0 {
		return 0, fmt.Errorf("create log lock %s: %w", name, err)
	}
	logLocks[name] = h
	return h, nil
}
