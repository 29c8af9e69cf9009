package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-bounce/bounce"
	"go-bounce/config"
	"go-bounce/debug"
	"go-bounce/midi"
	"go-bounce/sequencer"
	"go-bounce/theme"
	"go-bounce/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "go-bounce: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, saveConfig, err := loadConfig(args)
	if err != nil {
		return err
	}
	if saveConfig {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
		fmt.Fprintf(os.Stderr, "debug log: %s\n", debug.Path())
	}

	voicing, err := voicingFrom(cfg.Voicing)
	if err != nil {
		return err
	}

	conn, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	if cfg.Output.Backend != config.BackendSerial {
		defer midi.CloseDriver()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The worker outlives ctx so note-offs still drain after a signal.
	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := sequencer.NewManager(conn)
	tx, err := manager.Start(workerCtx)
	if err != nil {
		conn.Close()
		return err
	}

	if cfg.Sim.Intro {
		for _, n := range bounce.Intro() {
			if err := tx.Send(n); err != nil {
				return fmt.Errorf("intro: %w", err)
			}
		}
	}

	arena := bounce.Arena{Width: cfg.Sim.Width, Height: cfg.Sim.Height}
	producer := bounce.NewProducer(tx, arena, voicing, bounce.NewRand(cfg.Sim.Seed))

	var runErr error
	if cfg.UI.Headless {
		fmt.Fprintf(os.Stderr, "go-bounce: playing on %s, ctrl+c to stop\n", conn.Name())
		runErr = bounce.Run(ctx, producer, cfg.Sim.FPS, manager.Done())
		// A stopped worker reports its own error through manager.Wait.
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, bounce.ErrStopped) {
			runErr = nil
		}
	} else {
		runErr = runTUI(producer, manager, cfg)
	}

	// Release the producer handle and let pending note-offs drain.
	// A second signal during the drain kills the process.
	stop()
	tx.Close()
	drain, cancelDrain := context.WithTimeout(context.Background(), drainTimeout(cfg))
	defer cancelDrain()
	err = manager.Wait(drain)
	if errors.Is(err, context.DeadlineExceeded) {
		debug.Log("main", "drain timed out with %d offs pending", manager.Stats().Pending)
		err = nil
	}
	cancel()
	if runErr != nil && errors.Is(runErr, err) {
		err = nil
	}

	s := manager.Stats()
	debug.Log("main", "exit: delivered=%d ons=%d offs=%d lost=%d", s.Delivered, s.NoteOns, s.NoteOffs, s.LostOffs)
	return errors.Join(runErr, err)
}

// drainTimeout covers the longest note that can still be sounding, intro included.
func drainTimeout(cfg *config.Config) time.Duration {
	longest := cfg.MaxNoteDuration()
	if cfg.Sim.Intro {
		for _, n := range bounce.Intro() {
			longest = max(longest, n.Duration)
		}
	}
	return longest + time.Second
}

func runTUI(p *bounce.Producer, manager *sequencer.Manager, cfg *config.Config) error {
	palette := theme.Default()
	if cfg.UI.Palette != "" {
		loaded, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			return err
		}
		palette = loaded
	}

	m := tui.NewModel(p, manager, theme.New(palette), cfg.Sim.FPS)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(tui.Model); ok {
		return fm.Err()
	}
	return nil
}

// loadConfig reads the config file and applies any flags given on the command line.
func loadConfig(args []string) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("go-bounce", flag.ContinueOnError)
	var (
		path     = fs.String("config", "", "config file (default ~/.config/go-bounce/config.json)")
		port     = fs.String("port", "", "preferred output port, substring match")
		serialDv = fs.String("serial", "", "serial device for DIN MIDI, e.g. /dev/ttyUSB0")
		baud     = fs.Int("baud", 0, "serial baud rate")
		virtual  = fs.String("virtual", "", "create a virtual output port with this name")
		headless = fs.Bool("headless", false, "run without the terminal UI")
		fps      = fs.Int("fps", 0, "simulation frames per second")
		seed     = fs.Uint64("seed", 0, "random seed, 0 for time-based")
		intro    = fs.Bool("intro", true, "play the opening chord")
		dbg      = fs.Bool("debug", false, "write a debug log")
		save     = fs.Bool("save-config", false, "write the effective config back to disk")
	)
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	var cfg *config.Config
	var err error
	if *path != "" {
		cfg, err = config.LoadFrom(*path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, false, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Output.PortName = *port
		case "serial":
			cfg.Output.Backend = config.BackendSerial
			cfg.Output.SerialPort = *serialDv
		case "baud":
			cfg.Output.Baud = *baud
		case "virtual":
			cfg.Output.Backend = config.BackendVirtual
			cfg.Output.VirtualName = *virtual
		case "headless":
			cfg.UI.Headless = *headless
		case "fps":
			cfg.Sim.FPS = *fps
		case "seed":
			cfg.Sim.Seed = *seed
		case "intro":
			cfg.Sim.Intro = *intro
		case "debug":
			cfg.Debug = *dbg
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, *save, nil
}

func voicingFrom(v config.VoicingConfig) (bounce.Voicing, error) {
	out := bounce.Voicing{
		Pitches: map[bounce.Boundary]uint8{
			bounce.Right:  uint8(v.Right),
			bounce.Left:   uint8(v.Left),
			bounce.Top:    uint8(v.Top),
			bounce.Bottom: uint8(v.Bottom),
		},
		Velocity:    uint8(v.Velocity),
		MinDuration: time.Duration(v.MinDurationMs) * time.Millisecond,
		MaxDuration: time.Duration(v.MaxDurationMs) * time.Millisecond,
	}
	return out, out.Validate()
}

func openOutput(o config.OutputConfig) (*midi.Conn, error) {
	switch o.Backend {
	case config.BackendVirtual:
		return midi.OpenVirtual(o.VirtualName)
	case config.BackendSerial:
		return midi.Connect(midi.Serial{Baud: o.Baud, Only: o.SerialPort}, midi.WithPreferred(o.PortName))
	default:
		return midi.Connect(midi.RtMIDI{}, midi.WithPreferred(o.PortName))
	}
}
