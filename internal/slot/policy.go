package slot

import (
	"fmt"
	"sync"

	"github.com/Iron-Ham/msgslot/internal/errors"
)

// Policy decides whether another handle may be opened. It is consulted with
// the number of handles already open on the device and is independent of the
// channel protocol.
type Policy interface {
	// Name identifies the policy in logs and statistics.
	Name() string
	// Admit returns nil to allow the open, or the error to refuse it with.
	Admit(open int) error
}

// Unlimited admits every open.
type Unlimited struct{}

func (Unlimited) Name() string    { return "unlimited" }
func (Unlimited) Admit(int) error { return nil }

// Exclusive admits an open only while no other handle is open. Refusals wrap
// ErrBusy.
type Exclusive struct{}

func (Exclusive) Name() string { return "exclusive" }

func (Exclusive) Admit(open int) error {
	if open > 0 {
		return errors.ErrBusy
	}
	return nil
}

// Bounded admits at most Max concurrently open handles. Refusals wrap
// ErrResourceExhausted.
type Bounded struct {
	Max int
}

func (b Bounded) Name() string { return fmt.Sprintf("bounded(%d)", b.Max) }

func (b Bounded) Admit(open int) error {
	if open >= b.Max {
		return errors.ErrResourceExhausted
	}
	return nil
}

// PolicyFor builds the policy described by the device configuration:
// exclusive wins over a handle limit, and a limit of 0 means unlimited.
func PolicyFor(exclusive bool, maxHandles int) Policy {
	switch {
	case exclusive:
		return Exclusive{}
	case maxHandles > 0:
		return Bounded{Max: maxHandles}
	default:
		return Unlimited{}
	}
}

// gate counts open handles and applies the current policy.
type gate struct {
	mu     sync.Mutex
	open   int
	policy Policy
}

func (g *gate) acquire() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.policy.Admit(g.open); err != nil {
		return g.open, err
	}
	g.open++
	return g.open, nil
}

func (g *gate) release() {
	g.mu.Lock()
	if g.open > 0 {
		g.open--
	}
	g.mu.Unlock()
}

func (g *gate) setPolicy(p Policy) {
	g.mu.Lock()
	g.policy = p
	g.mu.Unlock()
}

func (g *gate) snapshot() (int, Policy) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open, g.policy
}
