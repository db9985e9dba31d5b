//go:build linux

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

// readahead tells the kernel the file will be read sequentially. Purely a
// hint; failures are ignored.
func readahead(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
