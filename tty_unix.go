//go:build unix && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package stdio

// Terminal detection is not wired for this platform; streams over character
// devices stay fully buffered.
func isatty(int) bool { return false }
