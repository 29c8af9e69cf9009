package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-bounce/bounce"
	"go-bounce/debug"
	"go-bounce/midi"
	"go-bounce/sequencer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "note":
		err = playNote(os.Args[2:])
	case "intro":
		err = playIntro(os.Args[2:])
	case "poll":
		pollPorts()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                          - List MIDI and serial output ports")
	fmt.Println("  note [flags] <pitch> <vel> <ms> - Play one note through the scheduler")
	fmt.Println("  intro [flags]                 - Play the opening chord")
	fmt.Println("  poll                          - Poll for output port changes")
	fmt.Println("")
	fmt.Println("Flags for note and intro:")
	fmt.Println("  -port <name>    preferred output port")
	fmt.Println("  -serial <dev>   use a serial device instead of rtmidi")
	fmt.Println("  -debug          write ~/.config/go-bounce/debug.log")
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	outs, err := midi.RtMIDI{}.OutPorts()
	switch {
	case err != nil:
		fmt.Printf("\n%v\n", err)
		fmt.Println("Fix (macOS): sudo killall coreaudiod midiserver")
	case len(outs) == 0:
		fmt.Println("  (none)")
	}
	for i, name := range midi.PortNames(outs) {
		fmt.Printf("  %d: %s\n", i, name)
	}
	midi.CloseDriver()

	fmt.Println("\n=== Serial Ports ===")
	serials, err := midi.Serial{}.OutPorts()
	if err != nil {
		fmt.Printf("  %v\n", err)
	}
	for i, name := range midi.PortNames(serials) {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

type playFlags struct {
	port   string
	serial string
	debug  bool
}

func parsePlayFlags(name string, args []string) (playFlags, []string, error) {
	var pf playFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&pf.port, "port", "", "preferred output port")
	fs.StringVar(&pf.serial, "serial", "", "serial device")
	fs.BoolVar(&pf.debug, "debug", false, "write a debug log")
	if err := fs.Parse(args); err != nil {
		return pf, nil, err
	}
	return pf, fs.Args(), nil
}

func playNote(args []string) error {
	pf, rest, err := parsePlayFlags("note", args)
	if err != nil {
		return err
	}
	if len(rest) != 3 {
		return fmt.Errorf("usage: note <pitch> <velocity> <ms>")
	}
	var vals [3]int
	for i, s := range rest {
		if vals[i], err = strconv.Atoi(s); err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
	}
	n, err := midi.NewNote(vals[0], vals[1], vals[2])
	if err != nil {
		return err
	}
	return play(pf, []midi.Note{n})
}

func playIntro(args []string) error {
	pf, _, err := parsePlayFlags("intro", args)
	if err != nil {
		return err
	}
	return play(pf, bounce.Intro())
}

// play sends notes through a fresh manager and waits for every note-off.
func play(pf playFlags, notes []midi.Note) error {
	if pf.debug {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	var conn *midi.Conn
	var err error
	if pf.serial != "" {
		conn, err = midi.Connect(midi.Serial{Baud: midi.DINBaud, Only: pf.serial})
	} else {
		conn, err = midi.Connect(midi.RtMIDI{}, midi.WithPreferred(pf.port))
		defer midi.CloseDriver()
	}
	if err != nil {
		return err
	}

	manager := sequencer.NewManager(conn, sequencer.WithUpdateBuffer(len(notes)*2))
	tx, err := manager.Start(context.Background())
	if err != nil {
		return err
	}

	var longest time.Duration
	for _, n := range notes {
		fmt.Printf("Sending: %s\n", n)
		if err := tx.Send(n); err != nil {
			return err
		}
		longest = max(longest, n.Duration)
	}
	tx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), longest+time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- manager.Wait(ctx) }()

	for {
		select {
		case d := <-manager.Updates():
			printDelivery(d)
		case err := <-done:
			for len(manager.Updates()) > 0 {
				printDelivery(<-manager.Updates())
			}
			s := manager.Stats()
			fmt.Printf("Done! ons=%d offs=%d on %s\n", s.NoteOns, s.NoteOffs, s.Port)
			return err
		}
	}
}

func printDelivery(d sequencer.Delivery) {
	fmt.Printf("  [%s] #%d %s\n", d.At.Format("15:04:05.000"), d.Seq, d.Note)
}

func pollPorts() {
	fmt.Println("Polling for output port changes every 2 seconds...")
	fmt.Println("Connect/disconnect a device to test. Ctrl+C to exit.")

	last := ""
	for {
		outs, err := midi.RtMIDI{}.OutPorts()
		if err != nil {
			fmt.Printf("\n[%s] %v\n", time.Now().Format("15:04:05"), err)
		}
		serials, _ := midi.Serial{}.OutPorts()
		names := append(midi.PortNames(outs), midi.PortNames(serials)...)

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Port change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Outputs: %v\n", names)
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
