package httpapi

import "sync"

// Gate is a one-shot readiness latch for the webhook receiver.
type Gate struct {
	once sync.Once
	ch   chan struct{}
}

func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Open releases the gate. Further calls are no-ops.
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// IsOpen reports whether Open has been called.
func (g *Gate) IsOpen() bool {
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}

// Done is closed once the gate opens.
func (g *Gate) Done() <-chan struct{} { return g.ch }
