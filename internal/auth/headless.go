package auth

// Headless reports whether the session looks unable to show a system
// prompt, along with the signal that decided it. A challenge in such a
// session waits forever since nothing can answer it.
func Headless(goos string, getenv func(string) string) (bool, string) {
	if getenv("SSH_TTY") != "" || getenv("SSH_CONNECTION") != "" {
		return true, "SSH session"
	}
	if getenv("CI") != "" {
		return true, "CI environment"
	}
	if goos == "linux" && getenv("DISPLAY") == "" && getenv("WAYLAND_DISPLAY") == "" {
		return true, "no display"
	}
	return false, ""
}
