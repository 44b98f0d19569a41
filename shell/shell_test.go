package shell

import (
	"fmt"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/phosphor/adapter"
	"github.com/lixenwraith/phosphor/audio"
	"github.com/lixenwraith/phosphor/console"
	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/cv"
	"github.com/lixenwraith/phosphor/effect"
	"github.com/lixenwraith/phosphor/engine"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/history"
	"github.com/lixenwraith/phosphor/input"
	"github.com/lixenwraith/phosphor/status"
	"github.com/lixenwraith/phosphor/vfs"
)

const testTree = `
children:
  - name: home
    children:
      - name: guest
        children:
          - name: about.txt
            content: "hello from phosphor\n"
          - name: projects
            children:
              - name: crt.md
                content: scanlines
          - name: pictures
            children: []
  - name: etc
    children:
      - name: motd
        content: welcome
`

var testPalette = console.Palette{
	Text:   core.RGB{R: 200, G: 200, B: 200},
	Prompt: core.RGB{G: 255},
	Error:  core.RGB{R: 255},
	Accent: core.RGB{B: 255},
}

type fakeVoice struct{ stopped *int }

func (v fakeVoice) Stop() { *v.stopped++ }

type fakeDevice struct {
	resumes int
	starts  int
	stops   int
}

func (d *fakeDevice) Resume() error                   { d.resumes++; return nil }
func (d *fakeDevice) SampleRate() beep.SampleRate     { return 44100 }
func (d *fakeDevice) Start(beep.Streamer) audio.Voice { d.starts++; return fakeVoice{&d.stops} }

type fixture struct {
	sh    *Shell
	con   *console.Console
	term  *grid.Terminal
	store *history.MemStore
	audio *audio.Subsystem
	dev   *fakeDevice
	sched *engine.Scheduler
	reg   *status.Registry
}

func newFixture(t *testing.T, cvCmd *cv.Command) *fixture {
	t.Helper()
	fs, err := vfs.Load([]byte(testTree), "/home/guest")
	if err != nil {
		t.Fatalf("vfs.Load: %v", err)
	}
	f := &fixture{
		term:  grid.NewTerminal(grid.BlockFace{}, core.RGBBlack),
		store: history.NewMemStore(),
		dev:   &fakeDevice{},
		sched: engine.NewScheduler(),
		reg:   status.NewRegistry(),
	}
	f.term.Resize(grid.Viewport{Width: 100, Height: 30})
	f.con = console.New(f.term, f.store, testPalette)
	f.audio = audio.NewSubsystem(f.dev, f.sched, f.reg)
	f.sh = New(Options{
		FS:       fs,
		Console:  f.con,
		Terminal: f.term,
		Store:    f.store,
		Audio:    f.audio,
		CV:       cvCmd,
		Sched:    f.sched,
		Registry: f.reg,
		User:     "guest",
		Host:     "crt",
		Seed:     func() uint64 { return 42 },
	})
	return f
}

func (f *fixture) lastLine() console.Line {
	lines := f.con.Lines()
	if len(lines) == 0 {
		return console.Line{}
	}
	return lines[len(lines)-1]
}

func (f *fixture) output() string {
	var out []string
	for _, l := range f.con.Lines() {
		out = append(out, l.Text)
	}
	return strings.Join(out, "\n")
}

func (f *fixture) screen() string {
	cols, rows := f.term.Size()
	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.WriteRune(f.term.Cell(r, c).Glyph)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func isPrompt(m Mode) bool {
	_, ok := m.(PromptMode)
	return ok
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Exec("cd projects")
	before := f.sh.State().Cwd

	f.sh.Exec("zzz --now")
	st := f.sh.State()
	if diff := cmp.Diff(before, st.Cwd); diff != "" {
		t.Errorf("cwd changed (-want +got):\n%s", diff)
	}
	if !isPrompt(st.Mode) {
		t.Errorf("mode = %v, want prompt", st.Mode)
	}
	want := console.Line{Text: "zzz: command not found", Fg: testPalette.Error}
	if diff := cmp.Diff(want, f.lastLine()); diff != "" {
		t.Errorf("last line mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name    string
		cmds    []string
		wantCwd string
		want    string
	}{
		{"pwd at home", []string{"pwd"}, "/home/guest", "/home/guest"},
		{"ls home", []string{"ls"}, "/home/guest", "about.txt  pictures/  projects/"},
		{"cd relative", []string{"cd projects", "pwd"}, "/home/guest/projects", "/home/guest/projects"},
		{"cd up", []string{"cd ..", "pwd"}, "/home", "/home"},
		{"cd absolute", []string{"cd /etc", "ls"}, "/etc", "motd"},
		{"cd home", []string{"cd /", "cd", "pwd"}, "/home/guest", "/home/guest"},
		{"cd missing", []string{"cd nowhere"}, "/home/guest", "cd: nowhere: no such file or directory"},
		{"cd file", []string{"cd about.txt"}, "/home/guest", "cd: about.txt: not a directory"},
		{"cat file", []string{"cat ~/projects/crt.md"}, "/home/guest", "scanlines"},
		{"cat dir", []string{"cat projects"}, "/home/guest", "cat: projects: is a directory"},
		{"cat trailing newline", []string{"cat about.txt"}, "/home/guest", "hello from phosphor"},
		{"ls file", []string{"ls /etc/motd"}, "/home/guest", "motd"},
		{"echo quoted", []string{`echo "a  b" c`}, "/home/guest", "a  b c"},
		{"unterminated quote", []string{`echo "a`}, "/home/guest", "sh: invalid command line string"},
		{"whoami", []string{"whoami"}, "/home/guest", "guest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			for _, c := range tt.cmds {
				f.sh.Exec(c)
			}
			if got := f.sh.State().Cwd.String(); got != tt.wantCwd {
				t.Errorf("cwd = %q, want %q", got, tt.wantCwd)
			}
			if got := f.lastLine().Text; got != tt.want {
				t.Errorf("last line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.sh.prompt(); got != "guest@crt:~$ " {
		t.Errorf("prompt = %q", got)
	}
	f.sh.Exec("cd projects")
	if got := f.sh.prompt(); got != "guest@crt:~/projects$ " {
		t.Errorf("prompt = %q", got)
	}
	f.sh.Exec("cd /etc")
	if got := f.sh.prompt(); got != "guest@crt:/etc$ " {
		t.Errorf("prompt = %q", got)
	}
}

func TestKeySubmit(t *testing.T) {
	f := newFixture(t, nil)
	for _, r := range "cd /etc" {
		f.sh.Key(input.RuneEvent(r))
	}
	f.sh.Key(input.KeyEvent(input.KeyEnter))
	if got := f.sh.State().Cwd.String(); got != "/etc" {
		t.Errorf("cwd = %q, want /etc", got)
	}
	cmds, _ := f.store.Cmds(10)
	if len(cmds) != 1 || cmds[0].Text != "cd /etc" {
		t.Errorf("history = %v", cmds)
	}
}

func TestCVHelpAndMissingArg(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	f := newFixture(t, cv.NewCommand(cv.NewClient(srv.URL, time.Second, nil), nil, ""))

	f.sh.Exec("cv --help")
	out := f.output()
	for _, flag := range cv.Flags() {
		if !strings.Contains(out, flag+" ") {
			t.Errorf("help lacks %s:\n%s", flag, out)
		}
	}

	f.sh.Exec("cv")
	if got := f.lastLine(); got.Text != cv.ErrMissingArg.Error() || got.Fg != testPalette.Error {
		t.Errorf("missing arg line = %+v", got)
	}
	f.sh.Exec("cv --salary")
	if !isPrompt(f.sh.State().Mode) {
		t.Errorf("mode after bad flag = %v", f.sh.State().Mode)
	}
	if hits.Load() != 0 || f.sched.Pending() != 0 {
		t.Errorf("fetches %d, deferred %d; want none", hits.Load(), f.sched.Pending())
	}
}

func waitDeferred(t *testing.T, s *engine.Scheduler) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no deferred callback within 5s")
		}
		time.Sleep(time.Millisecond)
	}
	s.Drain()
}

func TestCVAsync(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, `{"bio": [{"name": "Lix", "title": "Engineer"}]}`)
	}))
	defer srv.Close()
	f := newFixture(t, cv.NewCommand(cv.NewClient(srv.URL, 5*time.Second, nil), nil, ""))

	f.sh.Exec("cv --bio")
	m, ok := f.sh.State().Mode.(RunningMode)
	if !ok || m.Command != "cv" {
		t.Fatalf("mode = %v, want running cv", f.sh.State().Mode)
	}

	// keys are dropped while the command runs
	f.sh.Key(input.RuneEvent('x'))
	f.sh.Key(input.KeyEvent(input.KeyEnter))
	if f.con.Input() != "" {
		t.Errorf("input while running = %q", f.con.Input())
	}
	f.sh.Exec("pwd")
	if strings.Contains(f.output(), "/home/guest") {
		t.Error("command executed while cv was running")
	}

	close(release)
	waitDeferred(t, f.sched)
	if !isPrompt(f.sh.State().Mode) {
		t.Errorf("mode after fetch = %v", f.sh.State().Mode)
	}
	if out := f.output(); !strings.Contains(out, "| Lix ") {
		t.Errorf("output lacks the bio table:\n%s", out)
	}
}

func TestCVFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	f := newFixture(t, cv.NewCommand(cv.NewClient(srv.URL, time.Second, nil), nil, ""))

	f.sh.Exec("cv --oss")
	waitDeferred(t, f.sched)
	if got := f.lastLine(); got.Fg != testPalette.Error || !strings.Contains(got.Text, "fetch failed") {
		t.Errorf("last line = %+v", got)
	}
	if !isPrompt(f.sh.State().Mode) {
		t.Errorf("mode = %v", f.sh.State().Mode)
	}
}

func TestCVDownloadOnly(t *testing.T) {
	var opened atomic.Value
	opener := cv.OpenerFunc(func(url string) error {
		opened.Store(url)
		return nil
	})
	f := newFixture(t, cv.NewCommand(cv.NewClient("http://127.0.0.1:1", time.Second, nil), opener, "https://example.org/cv.pdf"))

	f.sh.Exec("cv --download")
	waitDeferred(t, f.sched)

	if got, _ := opened.Load().(string); got != "https://example.org/cv.pdf" {
		t.Errorf("opened %q", got)
	}
	if out := f.output(); strings.Contains(out, "fetching") {
		t.Errorf("download alone announced a fetch:\n%s", out)
	}
	if got := f.lastLine().Text; got != "opening https://example.org/cv.pdf" {
		t.Errorf("last line = %q", got)
	}
}

func TestGameQuit(t *testing.T) {
	f := newFixture(t, nil)
	f.audio.Ambient.Loaded(func() beep.Streamer { return nil })
	f.audio.Ambient.Play()

	f.sh.Exec("snake")
	if _, ok := f.sh.State().Mode.(GameMode); !ok {
		t.Fatalf("mode = %v, want game", f.sh.State().Mode)
	}
	if st := f.audio.Game.State(); st != audio.Pending {
		t.Errorf("game track = %v, want pending", st)
	}
	f.sh.Tick(16 * time.Millisecond)
	if !strings.Contains(f.screen(), "■") {
		t.Fatal("snake not drawn")
	}

	f.sh.Key(input.RuneEvent('q'))
	if !isPrompt(f.sh.State().Mode) {
		t.Fatalf("mode after q = %v", f.sh.State().Mode)
	}
	screen := f.screen()
	for _, g := range []string{"■", "◆", "SNAKE", "+--"} {
		if strings.Contains(screen, g) {
			t.Errorf("game glyph %q left on screen:\n%s", g, screen)
		}
	}
	if !strings.Contains(screen, "snake: quit, score 0") {
		t.Errorf("result line missing:\n%s", screen)
	}
	if st := f.audio.Game.State(); st != audio.Unloaded {
		t.Errorf("game track = %v, want unloaded", st)
	}
	if st := f.audio.Ambient.State(); st != audio.Playing {
		t.Errorf("ambient track = %v, want playing", st)
	}
	sc, err := f.store.Score("snake")
	if err != nil || sc.Plays != 1 {
		t.Errorf("score = %+v, %v", sc, err)
	}
}

func TestGameLost(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Exec("snake")
	for i := 0; i < 200 && !isPrompt(f.sh.State().Mode); i++ {
		f.sh.Tick(100 * time.Millisecond)
	}
	if !isPrompt(f.sh.State().Mode) {
		t.Fatal("snake never hit the wall")
	}
	if got := f.lastLine().Text; !strings.HasPrefix(got, "snake: game over") {
		t.Errorf("result = %q", got)
	}
}

func TestGameCommands(t *testing.T) {
	for _, name := range []string{"pong", "snake", "tetris", "matrix"} {
		f := newFixture(t, nil)
		f.sh.Exec(name)
		m, ok := f.sh.State().Mode.(GameMode)
		if !ok || m.Game.Name() != name {
			t.Errorf("%s: mode = %v", name, f.sh.State().Mode)
			continue
		}
		f.sh.Key(input.KeyEvent(input.KeyEscape))
		if !isPrompt(f.sh.State().Mode) {
			t.Errorf("%s: Esc did not return to prompt", name)
		}
	}
}

func TestMusic(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Exec("music on")
	if st := f.audio.Ambient.State(); st != audio.Pending {
		t.Errorf("ambient = %v, want pending", st)
	}
	if got := f.lastLine().Text; got != "music: on, waiting for the track to load" {
		t.Errorf("line = %q", got)
	}
	f.audio.Ambient.Loaded(func() beep.Streamer { return nil })
	if f.dev.starts != 1 {
		t.Errorf("device starts = %d", f.dev.starts)
	}
	f.sh.Exec("music off")
	if st := f.audio.Ambient.State(); st != audio.Loaded || f.dev.stops != 1 {
		t.Errorf("ambient = %v, stops %d", st, f.dev.stops)
	}
	f.sh.Exec("music loud")
	if got := f.lastLine(); got.Fg != testPalette.Error {
		t.Errorf("bad argument line = %+v", got)
	}
}

func TestScoresAndStatus(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Exec("scores")
	if got := f.lastLine().Text; got != "no games played yet" {
		t.Errorf("scores = %q", got)
	}
	f.store.RecordScore("tetris", 1200)
	f.sh.Exec("scores")
	if out := f.output(); !strings.Contains(out, "| tetris | 1200 | 1     |") {
		t.Errorf("scores table:\n%s", out)
	}

	f.sh.Exec("status")
	out := f.output()
	for _, key := range []string{"audio.ambient", "audio.game", "shell.mode"} {
		if !strings.Contains(out, key) {
			t.Errorf("status lacks %s:\n%s", key, out)
		}
	}
}

func TestHelpListsCommands(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Exec("help")
	out := f.output()
	for _, name := range f.sh.Commands() {
		if !strings.Contains(out, "  "+name+" ") {
			t.Errorf("help lacks %s", name)
		}
	}
	for _, want := range []string{"cd", "ls", "cv", "pong", "snake", "tetris", "matrix", "music", "history"} {
		if _, ok := f.sh.builtins[want]; !ok {
			t.Errorf("no builtin %s", want)
		}
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		line string
		want []string
	}{
		{"wh", []string{"whoami "}},
		{"c", []string{"cat", "cd", "clear", "cv"}},
		{"cd p", []string{"pictures/", "projects/"}},
		{"cd pr", []string{"projects/"}},
		{"cat projects/c", []string{"projects/crt.md "}},
		{"cat /e", []string{"/etc/"}},
		{"echo p", nil},
		{"cd nowhere/x", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, f.sh.complete(tt.line)); diff != "" {
			t.Errorf("complete(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestHistoryBuiltin(t *testing.T) {
	f := newFixture(t, nil)
	for _, cmd := range []string{"pwd", "ls"} {
		for _, r := range cmd {
			f.sh.Key(input.RuneEvent(r))
		}
		f.sh.Key(input.KeyEvent(input.KeyEnter))
	}
	f.sh.Exec("history")
	if got := f.lastLine().Text; got != "    2  ls" {
		t.Errorf("history tail = %q", got)
	}
}

func TestExit(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Exec("exit")
	if got := f.lastLine(); got.Fg != testPalette.Error {
		t.Errorf("exit without a quit hook printed %+v", got)
	}

	quits := 0
	f.sh.opt.Quit = func() { quits++ }
	f.sh.Exec("exit")
	if quits != 1 || f.lastLine().Text != "logout" {
		t.Errorf("quits = %d, last line %q", quits, f.lastLine().Text)
	}
}

func TestGreet(t *testing.T) {
	f := newFixture(t, nil)
	f.sh.Greet()
	lines := f.con.Lines()
	if len(lines) != 2 {
		t.Fatalf("greeting = %+v", lines)
	}
	if lines[0].Text != "welcome" || lines[0].Fg != testPalette.Accent {
		t.Errorf("motd line = %+v", lines[0])
	}
}

type discardCompositor struct{}

func (discardCompositor) Composite(*grid.StaticBuffer, *image.RGBA, effect.Params) error { return nil }

func TestOutputWhileUnfocusedReachesGrid(t *testing.T) {
	f := newFixture(t, nil)
	mock := engine.NewMockTimeProvider(time.Unix(0, 0))
	clock := engine.NewPausableClock(mock)
	in := adapter.New(f.term, f.sh, adapter.Options{Clock: clock, Registry: f.reg})
	pipe := engine.NewPipeline(f.sched, engine.Stages{
		Events:    in,
		Shell:     f.sh,
		Static:    f.term,
		Composite: discardCompositor{},
		Clock:     clock,
	}, mock, f.reg)

	const frame = 16 * time.Millisecond
	if err := mock.Step(3, frame, pipe.Frame); err != nil {
		t.Fatal(err)
	}

	in.Post(input.FocusEvent(false))
	if err := mock.Step(3, frame, pipe.Frame); err != nil {
		t.Fatal(err)
	}
	if !clock.IsPaused() {
		t.Fatal("Expected game clock paused after blur")
	}
	if _, _, visible := f.term.Cursor(); visible {
		t.Error("Expected cursor hidden while unfocused")
	}

	f.sched.Defer(func() { f.con.Println("late output") })
	if err := mock.Step(3, frame, pipe.Frame); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.screen(), "late output") {
		t.Errorf("Expected deferred output on the grid while unfocused, got:\n%s", f.screen())
	}
}
