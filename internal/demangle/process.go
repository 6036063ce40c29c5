package demangle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/apex/log"

	"github.com/han-qiu/binsize/internal/binerr"
)

// killGrace is how long Close waits for the child to exit after SIGTERM
// before escalating to SIGKILL.
const killGrace = 2 * time.Second

// Process demangles symbols by round-tripping them through a long-lived
// external demangler (c++filt by default), one newline-terminated symbol
// at a time. Calls are serialized: only one request is ever in flight.
type Process struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	closed bool
}

// NewProcess spawns binary (default "c++filt") with the given args and
// wires its stdin/stdout as the demangle pipe.
func NewProcess(binary string, args ...string) (*Process, error) {
	if binary == "" {
		binary = "c++filt"
	}

	cmd := exec.Command(binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, binerr.FatalIO("open demangler stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, binerr.FatalIO("open demangler stdout", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, binerr.FatalIO(fmt.Sprintf("spawn demangler %q", binary), err)
	}

	return &Process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// Demangle writes symbol followed by '\n' and reads back one line.
func (p *Process) Demangle(symbol string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", binerr.FatalIO("demangle after close", nil)
	}

	if _, err := fmt.Fprintf(p.stdin, "%s\n", symbol); err != nil {
		return "", binerr.FatalIO("write to demangler", err)
	}

	line, err := p.stdout.ReadString('\n')
	if err != nil {
		return "", binerr.FatalIO("read from demangler", err)
	}

	return strings.TrimSuffix(line, "\n"), nil
}

// Close signals the child to terminate gracefully, escalating to SIGKILL
// if it does not exit within killGrace. A child that dies from either
// signal is not reported as an error.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.cmd.Process == nil {
		return nil
	}
	p.closed = true

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.WithError(err).Debug("demangle: SIGTERM failed, escalating to kill")
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(killGrace):
		_ = p.cmd.Process.Kill()
		err = <-done
	}

	// Exiting on the signal sent above is the expected outcome, not a failure.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return nil
		}
	}
	return err
}
