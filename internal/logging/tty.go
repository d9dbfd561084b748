package logging

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether v is an *os.File attached to a terminal. Any
// other reader or writer (pipes wrapped in buffers, test doubles) is not.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
