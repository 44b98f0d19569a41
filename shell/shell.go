// Package shell interprets command lines against the virtual filesystem,
// runs the cv command in the background and hands the terminal to games.
// Everything except the cv fetch runs on the loop goroutine.
package shell

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/lixenwraith/phosphor/audio"
	"github.com/lixenwraith/phosphor/console"
	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/cv"
	"github.com/lixenwraith/phosphor/game"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/history"
	"github.com/lixenwraith/phosphor/input"
	"github.com/lixenwraith/phosphor/status"
	"github.com/lixenwraith/phosphor/vfs"
)

// Deferrer runs a callback on the loop goroutine
type Deferrer interface {
	Defer(fn func())
}

// Options are the collaborators of a shell. FS, Console and Terminal are
// required; the rest may be left nil and the matching builtins report that
// they are unavailable.
type Options struct {
	FS       *vfs.FS
	Console  *console.Console
	Terminal *grid.Terminal
	Store    history.Store
	Audio    *audio.Subsystem
	Games    *game.Registry
	CV       *cv.Command
	Sched    Deferrer
	Registry *status.Registry

	User string
	Host string
	// Seed returns the RNG seed of a new game; defaults to the wall clock
	Seed func() uint64
	// Quit ends the session; exit is unavailable when nil
	Quit func()
}

type builtin struct {
	help string
	run  func(s *Shell, args []string)
}

// Shell is the command interpreter
type Shell struct {
	opt      Options
	fs       *vfs.FS
	con      *console.Console
	term     *grid.Terminal
	builtins map[string]builtin
	state    State

	statLast *status.AtomicString
	statMode *status.AtomicString
}

// New creates a shell in the home directory
func New(opt Options) *Shell {
	if opt.Games == nil {
		opt.Games = game.DefaultRegistry()
	}
	if opt.Registry == nil {
		opt.Registry = status.NewRegistry()
	}
	if opt.User == "" {
		opt.User = "guest"
	}
	if opt.Host == "" {
		opt.Host = "phosphor"
	}
	if opt.Seed == nil {
		opt.Seed = func() uint64 { return uint64(time.Now().UnixNano()) }
	}

	s := &Shell{
		opt:      opt,
		fs:       opt.FS,
		con:      opt.Console,
		term:     opt.Terminal,
		state:    State{Cwd: opt.FS.Home(), Mode: PromptMode{}},
		statLast: opt.Registry.Strings.Get("shell.last"),
		statMode: opt.Registry.Strings.Get("shell.mode"),
	}
	s.builtins = builtins()
	for _, name := range opt.Games.Names() {
		s.builtins[name] = builtin{help: opt.Games.Help(name), run: gameBuiltin(name)}
	}
	s.con.SetCompleter(s.complete)
	s.setMode(PromptMode{})
	return s
}

// Greet prints /etc/motd, if present, and a pointer to help
func (s *Shell) Greet() {
	if n, err := s.fs.Lookup(vfs.Path{"etc", "motd"}); err == nil && !n.IsDir() {
		s.con.Print(strings.TrimSuffix(n.Content, "\n"), s.con.Palette().Accent)
	}
	s.con.Println("type 'help' to list commands")
}

// State returns a copy of the current state
func (s *Shell) State() State {
	return State{Cwd: slices.Clone(s.state.Cwd), Mode: s.state.Mode}
}

// Commands lists the builtin names in order
func (s *Shell) Commands() []string {
	names := make([]string, 0, len(s.builtins))
	for n := range s.builtins {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *Shell) setMode(m Mode) {
	s.state.Mode = m
	s.statMode.Store(m.String())
	_, prompt := m.(PromptMode)
	s.con.ShowInput(prompt)
	s.con.SetPrompt(s.prompt())
}

// prompt renders user@host:path$ with the home directory shown as ~
func (s *Shell) prompt() string {
	return fmt.Sprintf("%s@%s:%s$ ", s.opt.User, s.opt.Host, s.displayPath(s.state.Cwd))
}

func (s *Shell) displayPath(p vfs.Path) string {
	home := s.fs.Home()
	if len(home) > 0 && len(p) >= len(home) && slices.Equal(p[:len(home)], home) {
		rest := p[len(home):]
		if len(rest) == 0 {
			return "~"
		}
		return "~" + rest.String()
	}
	return p.String()
}

// Key routes an input event according to the mode
func (s *Shell) Key(ev input.Event) {
	switch m := s.state.Mode.(type) {
	case PromptMode:
		if line, ok := s.con.Key(ev); ok {
			s.Exec(line)
		}
	case RunningMode:
		// no cancellation: the command finishes on its own
	case GameMode:
		m.Game.Key(ev)
		if m.Game.Outcome() != game.Running {
			s.endGame(m.Game)
		}
	}
}

// Tick advances the console or the running game and draws into the grid
func (s *Shell) Tick(dt time.Duration) {
	if m, ok := s.state.Mode.(GameMode); ok {
		if dt > 0 {
			m.Game.Tick(dt)
		}
		if m.Game.Outcome() != game.Running {
			s.endGame(m.Game)
			return
		}
		m.Game.Draw(s.term)
		return
	}
	if dt > 0 {
		s.con.Tick(dt)
	}
	s.con.Redraw()
}

// Resize re-lays out the output for a new grid size
func (s *Shell) Resize(cols, rows int) {
	s.con.Invalidate()
	if m, ok := s.state.Mode.(GameMode); ok {
		m.Game.Draw(s.term)
		return
	}
	s.con.Redraw()
}

// SetFocus shows or hides the cursor when the window focus changes
func (s *Shell) SetFocus(on bool) {
	s.con.SetActive(on)
}

// Exec runs one command line. Only valid in prompt mode.
func (s *Shell) Exec(line string) {
	if _, ok := s.state.Mode.(PromptMode); !ok {
		return
	}
	argv, err := shellwords.Parse(line)
	if err != nil {
		s.con.Errorln("sh: " + err.Error())
		return
	}
	if len(argv) == 0 {
		return
	}
	s.statLast.Store(argv[0])
	b, ok := s.builtins[argv[0]]
	if !ok {
		s.con.Errorln(argv[0] + ": command not found")
		return
	}
	b.run(s, argv[1:])
}

// theme derives game colors from the console palette
func (s *Shell) theme() game.Theme {
	p := s.con.Palette()
	return game.Theme{
		Fg:     p.Text,
		Accent: p.Accent,
		Dim:    p.Text.Scale(0.45),
		Alert:  p.Error,
	}
}

func (s *Shell) startGame(name string) {
	g, ok := s.opt.Games.New(name, game.Options{Seed: s.opt.Seed(), Theme: s.theme()})
	if !ok {
		s.con.Errorln(name + ": command not found")
		return
	}
	cols, rows := s.term.Size()
	g.Start(cols, rows)
	s.setMode(GameMode{Game: g})
	s.term.SetCursor(0, 0, false)
	if s.opt.Audio != nil {
		s.opt.Audio.Game.Play()
	}
	g.Draw(s.term)
}

// endGame returns to the prompt with a clean grid and reports the result
func (s *Shell) endGame(g game.Game) {
	s.term.Clear()
	if s.opt.Audio != nil {
		s.opt.Audio.Game.Stop()
		s.opt.Audio.Game.Cancel()
	}

	var result string
	switch g.Outcome() {
	case game.Won:
		result = "you won"
	case game.Lost:
		result = "game over"
	default:
		result = "quit"
	}
	msg := fmt.Sprintf("%s: %s, score %d", g.Name(), result, g.Score())
	if s.opt.Store != nil {
		rec, best, err := s.opt.Store.RecordScore(g.Name(), g.Score())
		switch {
		case err != nil:
			s.con.Errorln("scores: " + err.Error())
		case best && rec.Plays > 1:
			msg += ", new high score!"
		}
	}
	s.setMode(PromptMode{})
	s.con.Print(msg, s.con.Palette().Accent)
	s.con.Invalidate()
	s.con.Redraw()
}

// runAsync moves to RunningMode and calls work off the loop goroutine; its
// result is applied through the scheduler, which also restores the prompt
func (s *Shell) runAsync(name string, work func() func()) {
	if s.opt.Sched == nil {
		s.con.Errorln(name + ": not available")
		return
	}
	s.setMode(RunningMode{Command: name})
	core.Go(func() {
		apply := work()
		s.opt.Sched.Defer(func() {
			apply()
			s.setMode(PromptMode{})
		})
	})
}

// pathError formats a vfs error the way coreutils do
func pathError(cmd, arg string, err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return fmt.Sprintf("%s: %s: %v", cmd, arg, vfs.ErrNotFound)
	case errors.Is(err, vfs.ErrNotDir):
		return fmt.Sprintf("%s: %s: %v", cmd, arg, vfs.ErrNotDir)
	case errors.Is(err, vfs.ErrIsDir):
		return fmt.Sprintf("%s: %s: %v", cmd, arg, vfs.ErrIsDir)
	}
	return fmt.Sprintf("%s: %v", cmd, err)
}

func joinArgs(args []string) string { return strings.Join(args, " ") }
