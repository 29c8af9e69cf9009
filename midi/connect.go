package midi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go-bounce/debug"
)

var (
	// ErrNoDevice is returned when the backend exposes no output ports.
	ErrNoDevice = errors.New("no output port found")
	// ErrInvalidSelection is returned for a malformed or out-of-range port index.
	ErrInvalidSelection = errors.New("invalid output port selected")
)

// ConnectOptions controls how Connect picks a port.
type ConnectOptions struct {
	In        io.Reader // selection input, one line with a zero-based index
	Out       io.Writer // port list and prompt
	Preferred string    // case-insensitive substring of a port name
}

// Option modifies ConnectOptions.
type Option func(*ConnectOptions)

// WithPrompt sets where the selection prompt is written and read.
func WithPrompt(in io.Reader, out io.Writer) Option {
	return func(o *ConnectOptions) {
		o.In = in
		o.Out = out
	}
}

// WithPreferred selects the first port whose name contains name, skipping the prompt.
func WithPreferred(name string) Option {
	return func(o *ConnectOptions) {
		o.Preferred = strings.TrimSpace(name)
	}
}

func applyDefaultOptions(opts ...Option) ConnectOptions {
	o := ConnectOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}

// Connect enumerates the lister's ports, picks one and opens it.
// It blocks on the prompt when several ports exist and none is preferred.
func Connect(lister PortLister, opts ...Option) (*Conn, error) {
	o := applyDefaultOptions(opts...)

	ports, err := lister.OutPorts()
	if err != nil {
		return nil, fmt.Errorf("list output ports: %w", err)
	}
	debug.Log("connect", "ports=%q", PortNames(ports))

	port, err := SelectPort(ports, o)
	if err != nil {
		return nil, err
	}
	conn, err := Open(port)
	if err != nil {
		return nil, err
	}
	debug.Log("connect", "opened %q", port.Name())
	return conn, nil
}

// SelectPort applies the selection rules to an already enumerated list.
func SelectPort(ports []Port, o ConnectOptions) (Port, error) {
	switch len(ports) {
	case 0:
		return nil, ErrNoDevice
	case 1:
		fmt.Fprintf(o.Out, "Choosing the only available output port: %s\n", ports[0].Name())
		return ports[0], nil
	}

	if o.Preferred != "" {
		for _, p := range ports {
			if containsCI(p.Name(), o.Preferred) {
				fmt.Fprintf(o.Out, "Choosing preferred output port: %s\n", p.Name())
				return p, nil
			}
		}
		debug.Log("connect", "no port matches %q, prompting", o.Preferred)
	}

	fmt.Fprintln(o.Out, "\nAvailable output ports:")
	for i, p := range ports {
		fmt.Fprintf(o.Out, "%d: %s\n", i, p.Name())
	}
	fmt.Fprint(o.Out, "Please select output port: ")

	line, err := bufio.NewReader(o.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return nil, fmt.Errorf("%w: read selection: %w", ErrInvalidSelection, err)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, strings.TrimSpace(line))
	}
	if idx < 0 || idx >= len(ports) {
		return nil, fmt.Errorf("%w: %d not in 0-%d", ErrInvalidSelection, idx, len(ports)-1)
	}
	return ports[idx], nil
}
