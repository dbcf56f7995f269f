//go:build unix

package module

import (
	"io/fs"
	"syscall"
)

// fileOwner returns the uid and gid recorded in info
func fileOwner(info fs.FileInfo) (int, int, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return int(st.Uid), int(st.Gid), true
}
