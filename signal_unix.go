//go:build unix

package dirlist

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// NotifySignals wires process signals to an [InterruptToken].
//
// Terminating signals (SIGINT, SIGTERM, SIGQUIT, SIGHUP) and the keyboard
// stop signal (SIGTSTP) are caught; the token's handler, run at the walker's
// next poll point, calls flush (output flush, terminal restore) and then
// either re-raises the signal with its default disposition — the process
// exits with the conventional signal status — or stops the process, which
// resumes polling after SIGCONT.
//
// The returned stop function detaches the signal plumbing.
func NotifySignals(t *InterruptToken, flush func()) (stop func()) {
	sigs := []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
		syscall.SIGTSTP,
	}

	t.OnInterrupt(func(sig int) {
		if flush != nil {
			flush()
		}

		s := syscall.Signal(sig)

		if s == syscall.SIGTSTP {
			// Suspend; execution resumes here after SIGCONT.
			_ = unix.Kill(unix.Getpid(), unix.SIGSTOP)

			return
		}

		// Re-deliver with default disposition so the exit status reports
		// death-by-signal.
		signal.Reset(s)
		_ = unix.Kill(unix.Getpid(), s)
	})

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-ch:
				if s, ok := sig.(syscall.Signal); ok {
					t.Raise(int(s))
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
