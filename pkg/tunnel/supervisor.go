package tunnel

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// ProcessState tracks the child process lifecycle. Transitions:
//
//	NOT_STARTED -> RUNNING -> (TERMINATING) -> EXITED
//
// TERMINATING is entered only by an explicit Terminate; a process exiting
// on its own moves straight from RUNNING to EXITED. No transition goes back.
type ProcessState int

const (
	StateNotStarted ProcessState = iota
	StateRunning
	StateTerminating
	StateExited
)

func (s ProcessState) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Supervisor runs a child process attached to a pseudo-terminal and exposes
// its combined output as an asynchronous byte stream. The PTY descriptor
// pair is owned here exclusively; no other component touches process
// control.
//
// Reads and writes happen on internal goroutines that only move bytes
// through channels — they never touch UI state.
type Supervisor struct {
	mu    sync.Mutex
	state ProcessState
	cmd   *exec.Cmd
	ptmx  *os.File

	output chan []byte
	input  chan []byte
	done   chan struct{}

	waitOnce sync.Once
	exitCode int
	waitErr  error
}

// NewSupervisor returns a supervisor in the NOT_STARTED state.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		output: make(chan []byte, 64),
		input:  make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

// Start spawns argv with its standard streams bound to a newly allocated
// pseudo-terminal and returns immediately; the child runs concurrently.
// A missing executable or a failed PTY allocation is reported as
// *SpawnError.
func (s *Supervisor) Start(argv []string) error {
	if len(argv) == 0 {
		return errors.New("supervisor: empty argv")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateNotStarted {
		return fmt.Errorf("supervisor: already started (state %s)", s.state)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return &SpawnError{Command: argv[0], Err: err}
	}
	s.cmd = cmd
	s.ptmx = ptmx
	s.state = StateRunning

	// Seed the PTY size from the terminal the user is looking at, then keep
	// it in sync on window resize. Without this some environments end up
	// with a 0x0 PTY on the remote side.
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if cols, rows, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil && rows > 0 && cols > 0 {
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		}
	}
	startPTYResizeWatcher(ptmx)

	go s.readLoop()
	go s.writeLoop()
	return nil
}

// readLoop pumps PTY output into the output channel. When the output
// channel is full the oldest chunk is dropped; the session is ending or the
// consumer is far behind, and stalling the PTY read would be worse.
func (s *Supervisor) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case s.output <- data:
			default:
				select {
				case <-s.output:
				default:
				}
				s.output <- data
			}
		}
		if err != nil {
			// EOF or EIO: the child closed its end or exited.
			s.mu.Lock()
			if s.state == StateRunning {
				s.state = StateExited
			}
			s.mu.Unlock()
			close(s.output)
			close(s.done)
			return
		}
	}
}

// writeLoop forwards queued input to the child's side of the PTY.
func (s *Supervisor) writeLoop() {
	for {
		select {
		case data := <-s.input:
			if _, err := s.ptmx.Write(data); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// Output returns the child's combined output stream. The channel is closed
// when the child closes its end or exits.
func (s *Supervisor) Output() <-chan []byte {
	return s.output
}

// Write queues bytes for the child's input side of the PTY. It never
// blocks: when the queue is full or the process is gone the write is
// dropped and ErrWriteDropped is returned so the caller can surface a
// diagnostic. Safe to call while output is concurrently being read.
func (s *Supervisor) Write(p []byte) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != StateRunning && state != StateTerminating {
		return ErrNotRunning
	}

	select {
	case s.input <- p:
		return nil
	default:
		return ErrWriteDropped
	}
}

// Terminate sends SIGTERM to the child. It is idempotent and treats a
// process that already exited as success: losing that race is expected, not
// an error. Any other signal-delivery failure is surfaced.
func (s *Supervisor) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateNotStarted:
		return ErrNotRunning
	case StateExited:
		return nil
	}

	s.state = StateTerminating
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return fmt.Errorf("terminate: %w", err)
	}
	return nil
}

// Wait blocks until the child has exited and been reaped, then returns its
// exit status. The status is -1 when the child was killed by a signal
// (the usual case after Terminate). Wait is the only supervisor call that
// may block its caller on process exit.
func (s *Supervisor) Wait() (int, error) {
	s.mu.Lock()
	if s.state == StateNotStarted {
		s.mu.Unlock()
		return 0, ErrNotRunning
	}
	cmd := s.cmd
	s.mu.Unlock()

	s.waitOnce.Do(func() {
		err := cmd.Wait()
		code := 0
		if err != nil {
			var ee *exec.ExitError
			if errors.As(err, &ee) {
				code = ee.ExitCode()
				err = nil
			}
		}
		s.mu.Lock()
		s.exitCode = code
		s.waitErr = err
		s.state = StateExited
		s.mu.Unlock()
		_ = s.ptmx.Close()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode, s.waitErr
}

// State returns the current lifecycle state.
func (s *Supervisor) State() ProcessState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
