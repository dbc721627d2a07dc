//go:build !unix

package dirlist

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifySignals wires interrupt signals to an [InterruptToken] on platforms
// without the full Unix signal surface. The handler flushes and exits; there
// is no stop-signal handling here.
func NotifySignals(t *InterruptToken, flush func()) (stop func()) {
	t.OnInterrupt(func(int) {
		if flush != nil {
			flush()
		}

		os.Exit(130)
	})

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-ch:
				if s, ok := sig.(syscall.Signal); ok {
					t.Raise(int(s))
				} else {
					t.Raise(int(syscall.SIGINT))
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
