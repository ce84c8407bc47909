package consolidate

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal. Useful for
// detecting whether the application is running interactively or in a
// non-interactive environment (CI pipeline, piped input).
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsInteractive checks if stdin is a TTY, indicating that the user can
// provide interactive input. Returns false in CI environments, when
// input is piped, or when running as a background process.
func IsInteractive() bool {
	return IsTTY(os.Stdin.Fd())
}

// IsOutputTerminal checks if stdout is a TTY, indicating that output is
// being displayed directly to a user's terminal rather than being piped
// or redirected. Callers use this to choose between human-oriented and
// machine-oriented output.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
