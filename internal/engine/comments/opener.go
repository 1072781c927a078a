package comments

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// Opener hands a file to the desktop's default application.
type Opener interface {
	Open(path string) error
}

// SystemOpener uses xdg-open, open or "cmd /c start" depending on the OS.
type SystemOpener struct {
	// GOOS overrides runtime.GOOS; empty means the running OS.
	GOOS string
	// start runs the command; nil means (*exec.Cmd).Start.
	start func(*exec.Cmd) error
}

// Open checks that path exists and launches the handler without waiting for it.
func (o SystemOpener) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &engine.IOError{Op: "open", Path: path, Err: err}
	}
	cmd := o.command(path)
	start := o.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return &engine.IOError{Op: "open", Path: path, Err: err}
	}
	return nil
}

func (o SystemOpener) command(path string) *exec.Cmd {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "windows":
		// Empty title argument so a quoted path is not taken as the window title.
		return exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
