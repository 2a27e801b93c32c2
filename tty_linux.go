//go:build linux

package stdio

import "golang.org/x/sys/unix"

func isatty(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	return err == nil
}
