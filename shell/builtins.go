package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/phosphor/audio"
	"github.com/lixenwraith/phosphor/cv"
	"github.com/lixenwraith/phosphor/vfs"
)

func builtins() map[string]builtin {
	return map[string]builtin{
		"help":    {"list commands", (*Shell).help},
		"ls":      {"list a directory", (*Shell).ls},
		"cd":      {"change directory", (*Shell).cd},
		"pwd":     {"print the working directory", (*Shell).pwd},
		"cat":     {"print files", (*Shell).cat},
		"clear":   {"clear the screen", (*Shell).clear},
		"echo":    {"print arguments", (*Shell).echo},
		"whoami":  {"print the user name", (*Shell).whoami},
		"history": {"list previous commands", (*Shell).history},
		"cv":      {"curriculum vitae, see cv --help", (*Shell).cv},
		"scores":  {"list high scores", (*Shell).scores},
		"music":   {"music [on|off]", (*Shell).music},
		"status":  {"engine and audio metrics", (*Shell).status},
		"exit":    {"leave the terminal", (*Shell).exit},
	}
}

func gameBuiltin(name string) func(s *Shell, args []string) {
	return func(s *Shell, _ []string) { s.startGame(name) }
}

func (s *Shell) help(_ []string) {
	names := s.Commands()
	w := 0
	for _, n := range names {
		w = max(w, len(n))
	}
	for _, n := range names {
		s.con.Println(fmt.Sprintf("  %-*s  %s", w, n, s.builtins[n].help))
	}
}

func (s *Shell) ls(args []string) {
	targets := args
	if len(targets) == 0 {
		targets = []string{"."}
	}
	for i, target := range targets {
		_, node, err := s.fs.Resolve(s.state.Cwd, target)
		if err != nil {
			s.con.Errorln(pathError("ls", target, err))
			continue
		}
		if len(targets) > 1 && node.IsDir() {
			if i > 0 {
				s.con.Println("")
			}
			s.con.Println(target + ":")
		}
		if !node.IsDir() {
			s.con.Println(node.Name)
			continue
		}
		names := make([]string, 0, len(node.Children))
		for _, c := range node.Children {
			if c.IsDir() {
				names = append(names, c.Name+"/")
			} else {
				names = append(names, c.Name)
			}
		}
		if len(names) > 0 {
			s.con.Print(strings.Join(names, "  "), s.con.Palette().Accent)
		}
	}
}

func (s *Shell) cd(args []string) {
	target := "~"
	switch len(args) {
	case 0:
	case 1:
		target = args[0]
	default:
		s.con.Errorln("cd: too many arguments")
		return
	}
	p, node, err := s.fs.Resolve(s.state.Cwd, target)
	if err == nil && !node.IsDir() {
		err = vfs.ErrNotDir
	}
	if err != nil {
		s.con.Errorln(pathError("cd", target, err))
		return
	}
	s.state.Cwd = p
	s.con.SetPrompt(s.prompt())
}

func (s *Shell) pwd(_ []string) {
	s.con.Println(s.state.Cwd.String())
}

func (s *Shell) cat(args []string) {
	if len(args) == 0 {
		s.con.Errorln("cat: missing file operand")
		return
	}
	for _, target := range args {
		_, node, err := s.fs.Resolve(s.state.Cwd, target)
		if err == nil && node.IsDir() {
			err = vfs.ErrIsDir
		}
		if err != nil {
			s.con.Errorln(pathError("cat", target, err))
			continue
		}
		s.con.Println(strings.TrimSuffix(node.Content, "\n"))
	}
}

func (s *Shell) clear(_ []string) {
	s.con.ClearScreen()
}

func (s *Shell) echo(args []string) {
	s.con.Println(joinArgs(args))
}

func (s *Shell) whoami(_ []string) {
	s.con.Println(s.opt.User)
}

func (s *Shell) exit(_ []string) {
	if s.opt.Quit == nil {
		s.con.Errorln("exit: there is nowhere to go")
		return
	}
	s.con.Println("logout")
	s.opt.Quit()
}

func (s *Shell) history(_ []string) {
	for i, cmd := range s.con.History() {
		s.con.Println(fmt.Sprintf("%5d  %s", i+1, cmd))
	}
}

func (s *Shell) cv(args []string) {
	req, err := cv.Parse(args)
	switch {
	case errors.Is(err, cv.ErrUsage):
		s.con.Errorln(err.Error())
		for _, l := range cv.Usage() {
			s.con.Println(l)
		}
		return
	case err != nil:
		s.con.Errorln(err.Error())
		return
	case req.Help:
		for _, l := range cv.Usage() {
			s.con.Println(l)
		}
		return
	}
	if s.opt.CV == nil {
		s.con.Errorln("cv: not configured")
		return
	}

	cols, _ := s.term.Size()
	if len(req.Sections) > 0 {
		s.con.Print("fetching...", s.con.Palette().Accent)
	}
	cmd := s.opt.CV
	s.runAsync("cv", func() func() {
		lines, err := cmd.Run(context.Background(), req, cols)
		return func() {
			pal := s.con.Palette()
			for _, l := range lines {
				switch l.Style {
				case cv.StyleTitle:
					s.con.Print(l.Text, pal.Accent)
				case cv.StyleChart:
					s.con.Print(l.Text, pal.Prompt)
				default:
					s.con.Println(l.Text)
				}
			}
			if err != nil {
				s.con.Errorln(err.Error())
			}
		}
	})
}

func (s *Shell) scores(_ []string) {
	if s.opt.Store == nil {
		s.con.Errorln("scores: no score store")
		return
	}
	all, err := s.opt.Store.Scores()
	if err != nil {
		s.con.Errorln("scores: " + err.Error())
		return
	}
	if len(all) == 0 {
		s.con.Println("no games played yet")
		return
	}
	header := []string{"Game", "Best", "Plays"}
	rows := make([][]string, 0, len(all))
	for _, sc := range all {
		rows = append(rows, []string{sc.Game, fmt.Sprint(sc.Best), fmt.Sprint(sc.Plays)})
	}
	cols, _ := s.term.Size()
	for _, l := range cv.Table(header, rows, cols) {
		s.con.Println(l)
	}
}

func (s *Shell) music(args []string) {
	if s.opt.Audio == nil {
		s.con.Errorln("music: no audio device")
		return
	}
	t := s.opt.Audio.Ambient
	switch {
	case len(args) == 0:
	case args[0] == "on":
		t.Play()
	case args[0] == "off":
		t.Stop()
		t.Cancel()
	default:
		s.con.Errorln("usage: music [on|off]")
		return
	}
	s.con.Println("music: " + describeTrack(t))
}

func describeTrack(t *audio.Track) string {
	switch t.State() {
	case audio.Playing:
		return "on"
	case audio.Pending:
		return "on, waiting for the track to load"
	case audio.Failed:
		if err := t.Err(); err != nil {
			return "unavailable: " + err.Error()
		}
		return "unavailable"
	}
	return "off"
}

func (s *Shell) status(_ []string) {
	entries := s.opt.Registry.Snapshot()
	if len(entries) == 0 {
		s.con.Println("no metrics")
		return
	}
	w := 0
	for _, e := range entries {
		w = max(w, len(e.Key))
	}
	for _, e := range entries {
		s.con.Println(fmt.Sprintf("%-*s  %s", w, e.Key, e.Value))
	}
}
