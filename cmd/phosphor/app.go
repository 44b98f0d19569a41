package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/phosphor/adapter"
	"github.com/lixenwraith/phosphor/asset"
	"github.com/lixenwraith/phosphor/audio"
	"github.com/lixenwraith/phosphor/config"
	"github.com/lixenwraith/phosphor/console"
	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/cv"
	"github.com/lixenwraith/phosphor/effect"
	"github.com/lixenwraith/phosphor/engine"
	"github.com/lixenwraith/phosphor/grid"
	"github.com/lixenwraith/phosphor/history"
	"github.com/lixenwraith/phosphor/render"
	"github.com/lixenwraith/phosphor/service"
	"github.com/lixenwraith/phosphor/shell"
	"github.com/lixenwraith/phosphor/status"
	"github.com/lixenwraith/phosphor/terminal"
	"github.com/lixenwraith/phosphor/vfs"
	"github.com/lixenwraith/phosphor/window"
)

const (
	sampleRate = beep.SampleRate(44100)
	noiseSize  = 256
)

type appOptions struct {
	ConfigPath string
	// Profile overrides effects.active, also across reloads
	Profile  string
	Frontend string
}

// app owns every long-lived component. Fields are touched only on the loop
// goroutine once run starts; loaders come back through sched.
type app struct {
	ctx    context.Context
	cancel context.CancelFunc
	opt    appOptions

	cfg   *config.Config
	live  *config.Live
	reg   *status.Registry
	sched *engine.Scheduler
	tp    engine.TimeProvider

	term  *grid.Terminal
	con   *console.Console
	comp  *render.Compositor
	store history.Store
	dev   *audio.BeepDevice
	sound *audio.Subsystem
	sh    *shell.Shell
	in    *adapter.Adapter
	loop  *engine.Loop

	screen *terminal.Screen
	win    *window.Window

	services *service.Hub
}

func newApp(parent context.Context, opt appOptions) (*app, error) {
	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opt.Profile != "" {
		cfg.Effects.Active = opt.Profile
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	fs, err := loadTree(cfg.Shell)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	a := &app{
		ctx:    ctx,
		cancel: cancel,
		opt:    opt,
		cfg:    cfg,
		live:   config.NewLive(cfg),
		reg:    status.NewRegistry(),
		sched:  engine.NewScheduler(),
		tp:     engine.NewMonotonicTimeProvider(),
	}

	var warnings []string
	a.store, err = openHistory(cfg.History.Path)
	if err != nil {
		log.Printf("history: %v", err)
		warnings = append(warnings, fmt.Sprintf("history: %v, keeping this session in memory", err))
		a.store = history.NewMemStore()
	}

	var face grid.Face = grid.BlockFace{}
	if opt.Frontend == frontendWindow {
		face = grid.FallbackFace()
	}
	a.term = grid.NewTerminal(face, cfg.Colors.Background.RGB())
	a.term.SetCursorColor(cfg.Colors.Text.RGB())
	a.con = console.New(a.term, a.store, palette(cfg.Colors))
	a.con.SetScrollback(cfg.Shell.Scrollback)

	a.comp = render.NewCompositor(cfg.Colors.Background.RGB(), cfg.Colors.Frame.RGB())
	a.applyRender(cfg)

	a.dev = audio.NewBeepDevice(sampleRate, cfg.Audio.Volume)
	if cfg.Audio.Enabled {
		a.sound = audio.NewSubsystem(a.dev, a.sched, a.reg)
	}

	var cvCmd *cv.Command
	if cfg.CV.URL != "" {
		client := cv.NewClient(cfg.CV.URL, cfg.CV.Timeout.Duration, a.reg)
		cvCmd = cv.NewCommand(client, cv.ExecOpener{}, cfg.CV.PDF)
	}

	a.sh = shell.New(shell.Options{
		FS:       fs,
		Console:  a.con,
		Terminal: a.term,
		Store:    a.store,
		Audio:    a.sound,
		CV:       cvCmd,
		Sched:    a.sched,
		Registry: a.reg,
		User:     cfg.Shell.User,
		Host:     cfg.Shell.Host,
		Quit:     cancel,
	})

	clock := engine.NewPausableClock(a.tp)
	in := adapter.Options{Clock: clock, Registry: a.reg}
	if a.sound != nil {
		in.Audio = a.dev
	}
	a.in = adapter.New(a.term, a.sh, in)

	var present engine.Presenter
	switch opt.Frontend {
	case frontendTerminal:
		scr, err := terminal.New(a.term, a.live)
		if err != nil {
			a.abort()
			return nil, err
		}
		a.screen = scr
		present = scr
		a.term.Resize(scr.Viewport())
	default:
		a.win = window.New(window.Options{
			Title:  "phosphor",
			Width:  cfg.Render.WindowWidth,
			Height: cfg.Render.WindowHeight,
			Scale:  cfg.Render.PixelScale,
			FPS:    cfg.Render.FPS,
		})
		present = a.win
		a.term.Resize(a.win.Viewport())
	}

	pipe := engine.NewPipeline(a.sched, engine.Stages{
		Events:    a.in,
		Shell:     a.sh,
		Static:    a.term,
		Composite: a.comp,
		Present:   present,
		Params:    a.live,
		Clock:     clock,
	}, a.tp, a.reg)
	a.loop = engine.NewLoop(pipe, a.tp, cfg.Render.FPS)

	a.services = service.NewHub()
	for _, svc := range a.serviceList() {
		if err := a.services.Register(svc); err != nil {
			a.abort()
			return nil, err
		}
	}

	a.sh.Greet()
	for _, w := range warnings {
		a.con.Errorln(w)
	}
	return a, nil
}

// serviceList declares the background work around the loop. The frontend
// starts last and stops first, so no input arrives once history and audio
// are gone.
func (a *app) serviceList() []service.Service {
	svcs := []service.Service{
		&service.Func{
			ID:     "history",
			OnStop: a.store.Close,
		},
		&service.Func{
			ID: "assets",
			OnStart: func(context.Context) error {
				a.startAssetLoads()
				return nil
			},
		},
		&service.Func{
			ID: "audio",
			OnStart: func(context.Context) error {
				a.startAudio()
				return nil
			},
			OnStop: func() error {
				if a.sound != nil {
					a.sound.StopAll()
				}
				a.dev.Close()
				return nil
			},
		},
	}
	if a.opt.ConfigPath != "" {
		svcs = append(svcs, &service.Func{
			ID:   "config",
			Deps: []string{"assets"},
			OnStart: func(ctx context.Context) error {
				return config.Watch(ctx, a.opt.ConfigPath, a.reload)
			},
		})
	}
	if a.screen != nil {
		svcs = append(svcs, &service.Func{
			ID:   "terminal",
			Deps: []string{"history", "audio"},
			OnStart: func(ctx context.Context) error {
				core.Go(func() { a.screen.Run(ctx, a.in.Post) })
				return nil
			},
			OnStop: func() error {
				a.screen.Close()
				return nil
			},
		})
	}
	return svcs
}

// run starts the services and blocks until the session ends
func (a *app) run() error {
	if err := a.services.StartAll(a.ctx); err != nil {
		return err
	}

	if a.screen != nil {
		err := a.loop.Run(a.ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return a.win.Run(a.ctx, a.loop, a.in.Post)
}

// abort releases what newApp built before it failed
func (a *app) abort() {
	a.cancel()
	if a.screen != nil {
		a.screen.Close()
	}
	a.dev.Close()
	if err := a.store.Close(); err != nil {
		log.Printf("history: close: %v", err)
	}
}

// close stops the services in reverse start order
func (a *app) close() {
	a.cancel()
	if a.services != nil {
		a.services.StopAll()
	}
	if a.screen != nil {
		a.screen.Close()
	}
}

// startAssetLoads kicks off the noise texture and, for the window, the
// font. Each completes through the scheduler; until then the placeholder
// noise and the fallback face stand in.
func (a *app) startAssetLoads() {
	cfg := a.cfg

	core.Go(func() {
		tex := loadNoise(cfg.Render.Noise)
		a.sched.Defer(func() { a.comp.SetNoise(tex) })
	})

	if a.win != nil {
		core.Go(func() {
			face, err := loadFace(cfg.Font)
			if err != nil {
				log.Printf("font: %v, keeping the fallback face", err)
				return
			}
			a.sched.Defer(func() { a.term.SetFace(face) })
		})
	}
}

// startAudio loads both tracks and requests the ambient one; it stays
// pending until its buffer arrives
func (a *app) startAudio() {
	if a.sound == nil {
		return
	}
	rate := a.dev.SampleRate()
	a.sound.LoadAsync(a.sound.Ambient, a.cfg.Audio.Ambient, audio.HumSource(rate))
	a.sound.LoadAsync(a.sound.Game, a.cfg.Audio.Game, audio.ChiptuneSource(rate))
	a.sound.Ambient.Play()
}

// reload runs on the watcher goroutine; the new configuration takes effect
// at the next frame boundary
func (a *app) reload(c *config.Config) {
	a.sched.Defer(func() {
		if p := a.opt.Profile; p != "" && slices.Contains(c.ProfileNames(), p) {
			c.Effects.Active = p
		}
		a.cfg = c
		a.live.Set(c)
		a.applyRender(c)
		a.con.SetPalette(palette(c.Colors))
		a.con.SetScrollback(c.Shell.Scrollback)
	})
}

func (a *app) applyRender(c *config.Config) {
	a.comp.SetColors(c.Colors.Background.RGB(), c.Colors.Frame.RGB())
	a.comp.SetTint(c.Colors.Phosphor.RGB(), c.Render.Tint)
	a.comp.SetPixelSize(c.Render.PixelSize)
}

func palette(c config.Colors) console.Palette {
	return console.Palette{
		Text:   c.Text.RGB(),
		Prompt: c.Prompt.RGB(),
		Error:  c.Error.RGB(),
		Accent: c.Accent.RGB(),
	}
}

func loadTree(sh config.Shell) (*vfs.FS, error) {
	data := []byte(asset.DefaultTree)
	if sh.Tree != "" {
		b, err := os.ReadFile(sh.Tree)
		if err != nil {
			return nil, fmt.Errorf("filesystem tree: %w", err)
		}
		data = b
	}
	fs, err := vfs.Load(data, sh.Home)
	if err != nil {
		return nil, fmt.Errorf("filesystem tree: %w", err)
	}
	return fs, nil
}

func openHistory(path string) (history.Store, error) {
	if path == "" {
		return history.NewMemStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return history.OpenBolt(path)
}

// loadNoise decodes the configured PNG, falling back to a generated texture
func loadNoise(path string) *effect.Texture {
	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			tex, err := effect.DecodeNoise(f)
			if err == nil {
				return tex
			}
			log.Printf("noise: %s: %v", path, err)
		} else {
			log.Printf("noise: %v", err)
		}
	}
	return effect.GenerateNoise(noiseSize, uint64(time.Now().UnixNano()))
}

func loadFace(f config.Font) (*grid.FontFace, error) {
	if f.Path == "" {
		return grid.LoadMonoFace(f.Size)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return grid.LoadFace(data, f.Size)
}
