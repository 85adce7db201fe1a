// Package cli holds the wiring and terminal loops behind cmd/banktalk.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/banktalk/banktalk/internal/logging"
)

// errInterrupted is returned by reads after the chat context ends.
var errInterrupted = errors.New("interrupted")

// SignalContext is cancelled on SIGINT or SIGTERM and remembers which
// signal did it.
type SignalContext struct {
	context.Context
	cancel context.CancelCauseFunc
}

type signalCause struct{ sig os.Signal }

func (c signalCause) Error() string { return "received " + c.sig.String() }

// NewSignalContext starts watching for termination signals until the
// returned context is done.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancelCause(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			cancel(signalCause{sig: sig})
		case <-ctx.Done():
		}
	}()

	return &SignalContext{Context: ctx, cancel: cancel}
}

// Cancel stops signal handling and cancels the context.
func (sc *SignalContext) Cancel() {
	sc.cancel(context.Canceled)
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	var cause signalCause
	if errors.As(context.Cause(sc.Context), &cause) {
		return cause.sig
	}
	return nil
}

// NewLogger configures the application logger. debug wins over level.
// Logs go to stderr so they never mix with the chat transcript.
func NewLogger(level string, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(logging.ParseLevel(level))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// cancelableReader fails reads once done is closed. A read already blocked
// on a terminal returns after the next line; its data is then discarded.
type cancelableReader struct {
	r    io.Reader
	done <-chan struct{}
}

func (c cancelableReader) Read(p []byte) (int, error) {
	if c.cancelled() {
		return 0, errInterrupted
	}
	n, err := c.r.Read(p)
	if c.cancelled() {
		return 0, errInterrupted
	}
	return n, err
}

func (c cancelableReader) cancelled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, errInterrupted) ||
		errors.Is(err, io.EOF)
}
