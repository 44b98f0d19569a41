package shell

import (
	"github.com/lixenwraith/phosphor/game"
	"github.com/lixenwraith/phosphor/vfs"
)

// Mode is the shell's interaction mode; exactly one of PromptMode,
// RunningMode or GameMode
type Mode interface {
	mode()
	String() string
}

// PromptMode reads and executes command lines
type PromptMode struct{}

// RunningMode waits for an asynchronous command; keys are dropped
type RunningMode struct {
	Command string
}

// GameMode hands the terminal, keys and ticks to a game
type GameMode struct {
	Game game.Game
}

func (PromptMode) mode()  {}
func (RunningMode) mode() {}
func (GameMode) mode()    {}

func (PromptMode) String() string    { return "prompt" }
func (m RunningMode) String() string { return "running " + m.Command }
func (m GameMode) String() string    { return "game " + m.Game.Name() }

// State is the observable shell state
type State struct {
	Cwd  vfs.Path
	Mode Mode
}
