package cv

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/lixenwraith/phosphor/core"
)

// Opener shows a URL in an external viewer
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// ExecOpener starts the platform URL handler and does not wait for it
type ExecOpener struct{}

func (ExecOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	core.Go(func() { _ = cmd.Wait() })
	return nil
}
