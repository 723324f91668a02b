// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"fmt"
	"sync"

	"github.com/pagesurf/pagesurf/logger"
)

// Token identifies one outstanding decode subscription. Tokens are unique for
// the lifetime of the registry; zero is never issued.
type Token int64

// NotifyFunc receives the one-shot decode notification for a page. Always
// invoked on the interaction thread.
type NotifyFunc func(DecodeResult)

type subscription struct {
	page int
	fn   NotifyFunc
}

// DecodeLoadRegistry routes "page decoded" events to whichever subscribers
// currently care about that page. Page-view slots are recycled and re-bound
// to different pages over time, so delivery goes strictly by still-registered
// token: an unsubscribed callback can never fire, even if the decode it was
// waiting for completes later.
//
// NotifyDecoded may be called from any goroutine; delivery is marshalled onto
// the interaction dispatcher and the page's subscriptions are consumed inside
// that dispatched step. An Unsubscribe sequenced before the delivery on the
// interaction thread therefore always wins.
type DecodeLoadRegistry struct {
	disp *dispatcher

	mu     sync.Mutex
	next   Token
	byTok  map[Token]*subscription
	byPage map[int]map[Token]*subscription
}

func newDecodeLoadRegistry(disp *dispatcher) *DecodeLoadRegistry {
	return &DecodeLoadRegistry{
		disp:   disp,
		byTok:  make(map[Token]*subscription),
		byPage: make(map[int]map[Token]*subscription),
	}
}

// Subscribe registers interest in the decode completion of pageIndex and
// returns immediately. Subscribing never triggers a decode; the pipeline
// drives those.
func (r *DecodeLoadRegistry) Subscribe(pageIndex int, fn NotifyFunc) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	tok := r.next
	sub := &subscription{page: pageIndex, fn: fn}
	r.byTok[tok] = sub
	if r.byPage[pageIndex] == nil {
		r.byPage[pageIndex] = make(map[Token]*subscription)
	}
	r.byPage[pageIndex][tok] = sub

	logger.Debug(fmt.Sprintf("Registry subscribe: page=%d token=%d watchers=%d", pageIndex, tok, len(r.byPage[pageIndex])), true)
	return tok
}

// Unsubscribe removes the registration. A token that was already consumed or
// never existed is a no-op, never an error.
func (r *DecodeLoadRegistry) Unsubscribe(tok Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byTok[tok]
	if !ok {
		return
	}
	delete(r.byTok, tok)
	delete(r.byPage[sub.page], tok)
	if len(r.byPage[sub.page]) == 0 {
		delete(r.byPage, sub.page)
	}
	logger.Debug(fmt.Sprintf("Registry unsubscribe: page=%d token=%d", sub.page, tok), true)
}

// NotifyDecoded delivers the decode result for pageIndex to every watcher
// still subscribed at delivery time, then consumes those subscriptions. Each
// token sees at most one notification.
func (r *DecodeLoadRegistry) NotifyDecoded(pageIndex int, res DecodeResult) {
	r.disp.Post(func() {
		r.mu.Lock()
		subs := r.byPage[pageIndex]
		delete(r.byPage, pageIndex)
		for tok := range subs {
			delete(r.byTok, tok)
		}
		r.mu.Unlock()

		logger.Debug(fmt.Sprintf("Registry notify: page=%d failed=%v watchers=%d", pageIndex, res.Failed(), len(subs)), true)
		for _, sub := range subs {
			sub.fn(res)
		}
	})
}
