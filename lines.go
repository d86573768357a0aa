package adsmeta

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
)

// Launcher starts a helper process and returns its combined output.
// Closing the returned reader releases the output handle; it must not wait
// for the process to exit.
type Launcher interface {
	Launch(executable, target string) (io.ReadCloser, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(executable, target string) (io.ReadCloser, error)

// Launch calls f(executable, target).
func (f LauncherFunc) Launch(executable, target string) (io.ReadCloser, error) {
	return f(executable, target)
}

// execLauncher runs helpers with os/exec, stdout and stderr on one pipe.
type execLauncher struct {
	logger *slog.Logger
}

func (l execLauncher) Launch(executable, target string) (io.ReadCloser, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, &ProcessStartError{Executable: executable, Target: target, Err: err}
	}

	cmd := exec.Command(executable, target)
	cmd.Stdin = nil
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, &ProcessStartError{Executable: executable, Target: target, Err: err}
	}

	// The child holds its own copy; ours must go so EOF arrives when it exits.
	_ = w.Close()

	return &processOutput{File: r, cmd: cmd, logger: l.logger}, nil
}

// processOutput is the read end of a helper's output pipe.
// ATTENTION: never Wait before the pipe is drained or closed. A helper that
// writes more than the pipe buffer holds would block forever, and so would we.
type processOutput struct {
	*os.File
	cmd    *exec.Cmd
	logger *slog.Logger
	once   sync.Once
}

func (p *processOutput) Close() error {
	err := p.File.Close()
	p.once.Do(func() {
		go p.reap()
	})
	return err
}

// reap collects the exit status once the process ends on its own.
func (p *processOutput) reap() {
	err := p.cmd.Wait()
	if err != nil {
		p.logger.Debug("helper exited", "cmd", p.cmd.Args, "error", err)
		return
	}
	p.logger.Debug("helper exited", "cmd", p.cmd.Args, "code", p.cmd.ProcessState.ExitCode())
}

// lineSource is a pull-driven, single-pass sequence of output lines.
// Each call to Next performs exactly one line read.
type lineSource struct {
	executable string
	rc         io.ReadCloser
	r          *bufio.Reader
	lines      int
	eof        bool
	done       bool
}

// openLines starts executable with target as its only argument.
// A nil enc reads the output as UTF-8.
func openLines(l Launcher, executable, target string, enc encoding.Encoding) (*lineSource, error) {
	rc, err := l.Launch(executable, target)
	if err != nil {
		var startErr *ProcessStartError
		if errors.As(err, &startErr) {
			return nil, err
		}
		return nil, &ProcessStartError{Executable: executable, Target: target, Err: err}
	}

	var r io.Reader = rc
	if enc != nil {
		r = enc.NewDecoder().Reader(rc)
	}

	return &lineSource{
		executable: executable,
		rc:         rc,
		r:          bufio.NewReader(r),
	}, nil
}

// Next returns the next line without its terminator. It returns io.EOF once
// the output is exhausted, at which point the handle has been closed. Any
// other error is a *ReadError and also ends the sequence.
func (s *lineSource) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	if s.eof {
		s.finish()
		return "", io.EOF
	}

	line, err := s.r.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if line == "" {
			s.finish()
			return "", io.EOF
		}
		// Unterminated last line, delivered before EOF.
		s.eof = true
	default:
		s.finish()
		return "", &ReadError{Executable: s.executable, Line: s.lines, Err: err}
	}

	s.lines++
	return strings.TrimRight(line, "\r\n"), nil
}

// Close releases the output handle. The process is left to exit by itself.
func (s *lineSource) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.rc.Close()
}

func (s *lineSource) finish() {
	_ = s.Close()
}

// All returns the remaining lines as a sequence. A read failure is yielded
// once as the final element. Stopping early closes the source.
func (s *lineSource) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.finish()
		for {
			line, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}
