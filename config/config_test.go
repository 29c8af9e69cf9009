package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxNoteDuration() != 2*time.Second {
		t.Fatalf("max duration = %s", cfg.MaxNoteDuration())
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Voicing.Right != 67 || cfg.Sim.FPS != 60 || cfg.Output.Backend != BackendRtMIDI {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Output.Backend = BackendSerial
	cfg.Output.SerialPort = "/dev/ttyUSB0"
	cfg.Voicing.Top = 72
	cfg.Sim.Seed = 99
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Output.Backend != BackendSerial || got.Output.SerialPort != "/dev/ttyUSB0" || got.Voicing.Top != 72 || got.Sim.Seed != 99 {
		t.Fatalf("got %+v", got)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"voicing":{"right":48,"left":71,"top":60,"bottom":64,"velocity":90,"minDurationMs":100,"maxDurationMs":400}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Voicing.Right != 48 || cfg.Voicing.Velocity != 90 {
		t.Fatalf("voicing = %+v", cfg.Voicing)
	}
	if cfg.Sim.FPS != 60 || cfg.Output.Baud != 31250 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"backend":  `{"output":{"backend":"jack"}}`,
		"pitch":    `{"voicing":{"right":128,"left":71,"top":60,"bottom":64,"velocity":100,"minDurationMs":300,"maxDurationMs":2000}}`,
		"velocity": `{"voicing":{"right":67,"left":71,"top":60,"bottom":64,"velocity":0,"minDurationMs":300,"maxDurationMs":2000}}`,
		"duration": `{"voicing":{"right":67,"left":71,"top":60,"bottom":64,"velocity":100,"minDurationMs":500,"maxDurationMs":500}}`,
		"fps":      `{"sim":{"fps":0,"width":800,"height":600}}`,
		"json":     `{not json`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFrom(path)
			if err == nil {
				t.Fatalf("accepted %s", body)
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("error should name the file: %v", err)
			}
		})
	}
}
