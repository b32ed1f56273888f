package notify

import "sync"

// Change es lo que recibe un ChanObserver.
type Change struct {
	URI string
}

// ChanObserver entrega cambios en un canal con buffer. Si el buffer está lleno
// o el observer ya se cerró, el cambio se descarta sin bloquear a Notify.
type ChanObserver struct {
	mu      sync.Mutex
	ch      chan Change
	closed  bool
	dropped int
}

func NewChanObserver(buffer int) *ChanObserver {
	if buffer < 0 {
		buffer = 0
	}
	return &ChanObserver{ch: make(chan Change, buffer)}
}

func (c *ChanObserver) C() <-chan Change { return c.ch }

func (c *ChanObserver) OnChange(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.ch <- Change{URI: uri}:
	default:
		c.dropped++
	}
}

// Dropped devuelve cuántos cambios se descartaron por buffer lleno.
func (c *ChanObserver) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close cierra el canal. Llamar después de Unregister.
func (c *ChanObserver) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
