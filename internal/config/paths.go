package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvHome overrides the directory relative runtime paths resolve against.
const EnvHome = "FOX_HOME"

// RuntimeRoot is FOX_HOME when set, else the directory of the running binary,
// else the working directory.
func RuntimeRoot() string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return filepath.Clean(expandHome(home))
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolveRuntimePath resolves raw against RuntimeRoot, using subdir when raw
// is empty. A leading "~/" expands to the user's home directory.
func ResolveRuntimePath(raw, subdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = subdir
	}
	target = expandHome(target)
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(RuntimeRoot(), target)
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
