package dirlist

import "sync/atomic"

// ============================================================================
// Cooperative interruption
// ============================================================================
//
// Signal handlers must stay minimal (set a flag, nothing more) to avoid
// reentrancy hazards with buffered output. The engine therefore never acts
// inside a handler: the platform adapter records the signal on an
// InterruptToken, and the walker polls the token at safe points — after each
// directory entry, after sorting, after each emitted listing. The poll runs
// the registered handler, which typically flushes output, undoes any visual
// side effect not safe to leave mid-sequence (an unterminated color escape),
// and then re-delivers the signal with default disposition or suspends the
// process.

// InterruptToken carries a pending signal from an asynchronous source (a
// signal handler) to the walker's poll points. The zero value is ready to
// use; a nil token polls as a no-op.
type InterruptToken struct {
	// pending holds the signal number, 0 when none. Written from the signal
	// goroutine, consumed at poll points.
	pending atomic.Int32

	// handle runs at the poll point that observes a pending signal. Set once
	// by the platform adapter before any Raise; not synchronized further.
	handle func(sig int)
}

// Raise records a pending signal. Safe to call from any goroutine; later
// signals overwrite earlier ones that were not yet observed.
func (t *InterruptToken) Raise(sig int) {
	t.pending.Store(int32(sig))
}

// OnInterrupt installs the handler run when a pending signal is observed at a
// poll point. Install before the token is attached to a session.
func (t *InterruptToken) OnInterrupt(fn func(sig int)) {
	t.handle = fn
}

// Poll observes and clears a pending signal, running the installed handler.
// Called at the walker's safe points; cheap when nothing is pending.
func (t *InterruptToken) Poll() {
	if t == nil {
		return
	}

	sig := t.pending.Swap(0)
	if sig == 0 {
		return
	}

	if t.handle != nil {
		t.handle(int(sig))
	}
}
