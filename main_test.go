package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-bounce/bounce"
	"go-bounce/config"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.DefaultConfig()
	cfg.Sim.FPS = 30
	cfg.Output.PortName = "IAC"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, save, err := loadConfig([]string{"-config", path, "-serial", "/dev/ttyUSB1", "-seed", "9", "-intro=false", "-save-config"})
	if err != nil {
		t.Fatal(err)
	}
	if !save {
		t.Fatal("-save-config not reported")
	}
	if got.Sim.FPS != 30 || got.Output.PortName != "IAC" {
		t.Fatalf("file values lost: %+v", got)
	}
	if got.Output.Backend != config.BackendSerial || got.Output.SerialPort != "/dev/ttyUSB1" {
		t.Fatalf("output = %+v", got.Output)
	}
	if got.Sim.Seed != 9 || got.Sim.Intro {
		t.Fatalf("sim = %+v", got.Sim)
	}
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, _, err := loadConfig([]string{"-config", path, "-fps", "0"}); err == nil {
		t.Fatal("fps 0 accepted")
	}
	if _, _, err := loadConfig([]string{"-config", path, "-nope"}); err == nil {
		t.Fatal("unknown flag accepted")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("loading must not create the file")
	}
}

func TestVoicingFrom(t *testing.T) {
	v, err := voicingFrom(config.DefaultConfig().Voicing)
	if err != nil {
		t.Fatal(err)
	}
	if v.Pitches[bounce.Left] != 71 || v.MaxDuration.Milliseconds() != 2000 {
		t.Fatalf("voicing = %+v", v)
	}
}

func TestDrainTimeoutCoversIntro(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Voicing.MinDurationMs = 50
	cfg.Voicing.MaxDurationMs = 100
	if got := drainTimeout(cfg); got != 1500*time.Millisecond {
		t.Fatalf("with intro: %s", got)
	}
	cfg.Sim.Intro = false
	if got := drainTimeout(cfg); got != 1100*time.Millisecond {
		t.Fatalf("without intro: %s", got)
	}
}
