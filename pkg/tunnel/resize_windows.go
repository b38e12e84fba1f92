//go:build windows
// +build windows

package tunnel

import "os"

// startPTYResizeWatcher is a no-op on Windows: SIGWINCH does not exist
// there, and referencing it anywhere in a Windows build fails compilation.
// Initial PTY sizing is still applied at Start on a best-effort basis.
func startPTYResizeWatcher(_ *os.File) {
	// no-op
}
