// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSize reports live subscriptions; test-only helper.
func (r *DecodeLoadRegistry) testSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTok)
}

func newTestRegistry(t *testing.T) (*DecodeLoadRegistry, *dispatcher) {
	disp := newDispatcher()
	t.Cleanup(disp.Close)
	return newDecodeLoadRegistry(disp), disp
}

func TestRegistry_NotifyDeliversOnce(t *testing.T) {
	reg, disp := newTestRegistry(t)

	var calls int32
	tok := reg.Subscribe(3, func(res DecodeResult) {
		atomic.AddInt32(&calls, 1)
		assert.False(t, res.Failed())
	})
	require.NotZero(t, tok)

	reg.NotifyDecoded(3, DecodeResult{})
	reg.NotifyDecoded(3, DecodeResult{})
	disp.Invoke(func() {})

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, reg.testSize())
}

func TestRegistry_UnsubscribeBeforeCompletion(t *testing.T) {
	reg, disp := newTestRegistry(t)

	var calls int32
	tok := reg.Subscribe(7, func(DecodeResult) { atomic.AddInt32(&calls, 1) })
	reg.Unsubscribe(tok)

	reg.NotifyDecoded(7, DecodeResult{})
	disp.Invoke(func() {})

	assert.Zero(t, atomic.LoadInt32(&calls), "callback fired after unsubscribe")
}

func TestRegistry_UnsubscribeIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)

	tok := reg.Subscribe(1, func(DecodeResult) {})
	reg.Unsubscribe(tok)
	reg.Unsubscribe(tok)       // consumed: no-op
	reg.Unsubscribe(Token(99)) // never issued: no-op
	assert.Equal(t, 0, reg.testSize())
}

func TestRegistry_NotifyOnlyMatchingPage(t *testing.T) {
	reg, disp := newTestRegistry(t)

	var page3, page7 int32
	reg.Subscribe(3, func(DecodeResult) { atomic.AddInt32(&page3, 1) })
	reg.Subscribe(7, func(DecodeResult) { atomic.AddInt32(&page7, 1) })

	reg.NotifyDecoded(3, DecodeResult{})
	disp.Invoke(func() {})

	assert.Equal(t, int32(1), atomic.LoadInt32(&page3))
	assert.Zero(t, atomic.LoadInt32(&page7))
	assert.Equal(t, 1, reg.testSize(), "page 7 subscription must survive")
}

func TestRegistry_MultipleWatchersSamePage(t *testing.T) {
	reg, disp := newTestRegistry(t)

	var calls int32
	for i := 0; i < 3; i++ {
		reg.Subscribe(5, func(DecodeResult) { atomic.AddInt32(&calls, 1) })
	}

	reg.NotifyDecoded(5, DecodeResult{})
	disp.Invoke(func() {})

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRegistry_UnsubscribeWinsOverInFlightNotify(t *testing.T) {
	// A notify already posted from a decode goroutine must not reach a
	// subscriber whose unsubscribe is sequenced before the delivery on the
	// interaction thread.
	reg, disp := newTestRegistry(t)

	var calls int32
	tok := reg.Subscribe(2, func(DecodeResult) { atomic.AddInt32(&calls, 1) })

	// Block the dispatcher so the notify stays queued behind us.
	gate := make(chan struct{})
	disp.Post(func() { <-gate })
	reg.NotifyDecoded(2, DecodeResult{})
	reg.Unsubscribe(tok)
	close(gate)
	disp.Invoke(func() {})

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRegistry_ConcurrentMutation(t *testing.T) {
	reg, disp := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok := reg.Subscribe(page, func(DecodeResult) {})
				reg.NotifyDecoded(page, DecodeResult{})
				reg.Unsubscribe(tok)
			}
		}(i % 3)
	}
	wg.Wait()
	disp.Invoke(func() {})

	require.Eventually(t, func() bool { return reg.testSize() == 0 }, time.Second, 5*time.Millisecond)
}
