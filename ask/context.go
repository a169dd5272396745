package main

import (
	"os"
	"path/filepath"
	"strings"

	terminai "github.com/terminai/terminai-api"
)

// gatherContext collects the environment hints the API understands.
// Values that cannot be determined are left out.
func gatherContext() map[string]any {
	ctx := make(map[string]any, 3)
	if name := osName(); name != "" {
		ctx[terminai.ContextOS] = name
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		ctx[terminai.ContextShell] = shell
	}
	if cwd, err := os.Getwd(); err == nil {
		home, _ := os.UserHomeDir()
		ctx[terminai.ContextCurrentDir] = tildePath(cwd, home)
	}
	return ctx
}

// tildePath abbreviates home to ~ at the start of path.
func tildePath(path, home string) string {
	if home == "" || home == string(filepath.Separator) {
		return path
	}
	if path == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return "~" + string(filepath.Separator) + rest
	}
	return path
}
