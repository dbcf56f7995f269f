package module

import (
	"github.com/scramjet-deb/scramjet/pkg/errors"
)

// Listener observes a staged write
type Listener func(remote, local string) error

type subscription struct {
	module string
	fn     Listener
}

// Bus fans staged-write notifications out to the modules of one build.
// A bus is created per build and never shared.
type Bus struct {
	subs    []subscription
	written []string
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds fn after every earlier subscriber
func (b *Bus) Subscribe(module string, fn Listener) {
	b.subs = append(b.subs, subscription{module: module, fn: fn})
}

// Publish notifies every subscriber, in subscription order, that remote was
// staged at local. The first failing subscriber aborts the fan-out.
func (b *Bus) Publish(remote, local string) error {
	b.written = append(b.written, remote)
	for _, s := range b.subs {
		if err := s.fn(remote, local); err != nil {
			return errors.Wrapf(err, errors.ErrModuleFailed, "module %s failed on written file %s", s.module, remote).
				WithDetail("module", s.module).
				WithDetail("path", remote)
		}
	}
	return nil
}

// Written returns every published remote path in publication order
func (b *Bus) Written() []string {
	return append([]string(nil), b.written...)
}
