package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// shutdownSignals stop a long-running command
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SignalHandler turns the first shutdown signal into a cancelled command
// context followed by the registered hooks, in registration order.
type SignalHandler struct {
	cancel context.CancelFunc
	logger *slog.Logger

	incoming chan os.Signal
	stopped  chan struct{}
	fired    chan struct{}

	mu    sync.Mutex
	hooks []func()

	fireOnce sync.Once
	stopOnce sync.Once
}

// NewSignalHandler creates a handler that calls cancel on shutdown
func NewSignalHandler(cancel context.CancelFunc, logger *slog.Logger) *SignalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalHandler{
		cancel:   cancel,
		logger:   logger,
		incoming: make(chan os.Signal, 1),
		stopped:  make(chan struct{}),
		fired:    make(chan struct{}),
	}
}

// OnShutdown registers fn to run after the context is cancelled
func (h *SignalHandler) OnShutdown(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// Start subscribes to SIGINT and SIGTERM
func (h *SignalHandler) Start() {
	h.listen(true)
}

// listen waits for a signal on incoming; notify=false skips the process
// subscription so tests can feed incoming themselves.
func (h *SignalHandler) listen(notify bool) {
	if notify {
		signal.Notify(h.incoming, shutdownSignals...)
	}
	go func() {
		select {
		case sig := <-h.incoming:
			h.Trigger(sig.String())
		case <-h.stopped:
		}
	}()
}

// Trigger shuts down as if a signal named reason had arrived. Only the first
// call has an effect.
func (h *SignalHandler) Trigger(reason string) {
	h.fireOnce.Do(func() {
		h.logger.Info("shutting down", "reason", reason)
		if h.cancel != nil {
			h.cancel()
		}

		h.mu.Lock()
		hooks := append([]func(){}, h.hooks...)
		h.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		close(h.fired)
	})
}

// Done is closed once every hook has returned
func (h *SignalHandler) Done() <-chan struct{} {
	return h.fired
}

// Stop unsubscribes without shutting down
func (h *SignalHandler) Stop() {
	signal.Stop(h.incoming)
	h.stopOnce.Do(func() { close(h.stopped) })
}
