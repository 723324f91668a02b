// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"sync"

	"github.com/pagesurf/pagesurf/logger"
)

// dispatcher is the single logical interaction thread: one goroutine running
// posted closures in FIFO order. All surface state transitions happen on it;
// decode completions from worker goroutines rejoin the pipeline by posting
// here.
type dispatcher struct {
	fns  chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		fns:  make(chan func(), 256),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case fn := <-d.fns:
			fn()
		case <-d.quit:
			// Run what was already queued, then stop.
			for {
				select {
				case fn := <-d.fns:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Post queues fn for execution on the interaction thread. After Close the
// function is dropped.
func (d *dispatcher) Post(fn func()) {
	select {
	case <-d.quit:
		logger.Debug("dispatcher: dropped post after close")
	case d.fns <- fn:
	}
}

// Invoke runs fn on the interaction thread and waits for it to finish.
// Must not be called from the interaction thread itself.
func (d *dispatcher) Invoke(fn func()) {
	ran := make(chan struct{})
	d.Post(func() {
		defer close(ran)
		fn()
	})
	select {
	case <-ran:
	case <-d.done:
	}
}

// Close stops the loop after draining already-queued work. Idempotent.
func (d *dispatcher) Close() {
	d.once.Do(func() { close(d.quit) })
	<-d.done
}
