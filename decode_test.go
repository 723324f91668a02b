// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesurf/pagesurf/document"
)

func newTestPipeline(t *testing.T, doc document.Document) (*Pipeline, *DecodeLoadRegistry, *dispatcher) {
	disp := newDispatcher()
	t.Cleanup(disp.Close)
	reg := newDecodeLoadRegistry(disp)
	cfg := NewDefaultConfig()
	cfg.DecodeTimeout = time.Second
	return newPipeline(doc, reg, cfg), reg, disp
}

func TestPipeline_DeliversDecodedPage(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(80, 120, color.White))
	pipe, reg, _ := newTestPipeline(t, doc)

	got := make(chan DecodeResult, 1)
	reg.Subscribe(0, func(res DecodeResult) { got <- res })
	pipe.Request(context.Background(), 0)

	select {
	case res := <-got:
		require.False(t, res.Failed())
		assert.Equal(t, 80, res.Page.Width())
		assert.Equal(t, 120, res.Page.Height())
	case <-time.After(2 * time.Second):
		t.Fatal("no decode notification")
	}
	assert.Equal(t, 1, doc.DecodeCalls(0))
}

func TestPipeline_CoalescesConcurrentRequests(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(40, 40, color.White))
	doc.SetDecodeDelay(100 * time.Millisecond)
	pipe, reg, _ := newTestPipeline(t, doc)

	var notified int32
	for i := 0; i < 4; i++ {
		reg.Subscribe(0, func(DecodeResult) { atomic.AddInt32(&notified, 1) })
	}
	for i := 0; i < 4; i++ {
		pipe.Request(context.Background(), 0)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&notified) == 4 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, doc.DecodeCalls(0), "concurrent requests must share one decode")
}

func TestPipeline_CachedPageNotifiesWithoutRedecode(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(40, 40, color.White))
	pipe, reg, _ := newTestPipeline(t, doc)

	first := make(chan DecodeResult, 1)
	reg.Subscribe(0, func(res DecodeResult) { first <- res })
	pipe.Request(context.Background(), 0)
	res := <-first

	// Re-bind of the same page: fresh subscription, cache hit.
	second := make(chan DecodeResult, 1)
	reg.Subscribe(0, func(res DecodeResult) { second <- res })
	pipe.Request(context.Background(), 0)

	res2 := <-second
	assert.Same(t, res.Page, res2.Page, "cached decode result should be shared")
	assert.Equal(t, 1, doc.DecodeCalls(0))
}

func TestPipeline_FailureTaggedNotification(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(40, 40, color.White))
	corrupt := errors.New("corrupt page data")
	doc.FailPage(0, corrupt)
	pipe, reg, _ := newTestPipeline(t, doc)

	got := make(chan DecodeResult, 1)
	reg.Subscribe(0, func(res DecodeResult) { got <- res })
	pipe.Request(context.Background(), 0)

	select {
	case res := <-got:
		require.True(t, res.Failed(), "subscriber must be notified with a failure, not dropped")
		assert.Nil(t, res.Page)
		var derr *DecodeError
		require.ErrorAs(t, res.Err, &derr)
		assert.Equal(t, 0, derr.Page)
		assert.ErrorIs(t, res.Err, corrupt)
	case <-time.After(2 * time.Second):
		t.Fatal("failure was silently dropped")
	}
}

func TestPipeline_FailureRetriesThenGivesUp(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(40, 40, color.White))
	doc.FailPage(0, errors.New("transient"))
	disp := newDispatcher()
	t.Cleanup(disp.Close)
	reg := newDecodeLoadRegistry(disp)
	cfg := NewDefaultConfig()
	cfg.MaxRetries = 2
	pipe := newPipeline(doc, reg, cfg)

	got := make(chan DecodeResult, 1)
	reg.Subscribe(0, func(res DecodeResult) { got <- res })
	pipe.Request(context.Background(), 0)

	res := <-got
	assert.True(t, res.Failed())
	assert.Equal(t, 3, doc.DecodeCalls(0), "initial attempt plus MaxRetries")
}

func TestPipeline_OutOfRangeIndex(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(40, 40, color.White))
	pipe, reg, _ := newTestPipeline(t, doc)

	got := make(chan DecodeResult, 1)
	reg.Subscribe(9, func(res DecodeResult) { got <- res })
	pipe.Request(context.Background(), 9)

	res := <-got
	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, document.ErrPageOutOfRange)
}

func TestPipeline_CancelledContext(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(40, 40, color.White))
	doc.SetDecodeDelay(5 * time.Second)
	pipe, reg, _ := newTestPipeline(t, doc)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan DecodeResult, 1)
	reg.Subscribe(0, func(res DecodeResult) { got <- res })
	pipe.Request(ctx, 0)
	cancel()

	select {
	case res := <-got:
		assert.True(t, res.Failed())
	case <-time.After(3 * time.Second):
		t.Fatal("cancelled decode never reported")
	}
}
