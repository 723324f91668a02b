// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/pagesurf/pagesurf/document"
	"github.com/pagesurf/pagesurf/logger"
)

// DecodeResult is the one-shot payload delivered through the registry:
// either a decoded page or a failure-tagged error, never both.
type DecodeResult struct {
	Page *document.DecodedPage
	Err  error
}

// Failed reports whether the decode ended in an error.
func (r DecodeResult) Failed() bool { return r.Err != nil }

// Pipeline turns fire-and-forget page requests into at-most-one decode per
// page. Concurrent requests for the same page coalesce onto one in-flight
// decode; completed pages land in a shared cache so a re-bind of the same
// page notifies without decoding again.
type Pipeline struct {
	doc document.Document
	reg *DecodeLoadRegistry
	cfg *Config

	sem   *semaphore.Weighted
	group singleflight.Group

	mu    sync.Mutex
	cache map[int]*document.DecodedPage
}

func newPipeline(doc document.Document, reg *DecodeLoadRegistry, cfg *Config) *Pipeline {
	return &Pipeline{
		doc:   doc,
		reg:   reg,
		cfg:   cfg,
		sem:   semaphore.NewWeighted(int64(cfg.MaxConcurrentDecodes)),
		cache: make(map[int]*document.DecodedPage),
	}
}

// Request asks for pageIndex to be decoded and returns immediately. The
// result — success or failure — reaches the registry's subscribers for that
// page exactly once per request that actually runs; duplicate concurrent
// requests share one decode and one notification.
func (p *Pipeline) Request(ctx context.Context, pageIndex int) {
	p.mu.Lock()
	cached := p.cache[pageIndex]
	p.mu.Unlock()
	if cached != nil {
		logger.Debug(fmt.Sprintf("Pipeline cache hit: page=%d", pageIndex), true)
		p.reg.NotifyDecoded(pageIndex, DecodeResult{Page: cached})
		return
	}

	go func() {
		// The notify happens inside the singleflight function so that
		// coalesced requests produce a single notification.
		p.group.Do(strconv.Itoa(pageIndex), func() (interface{}, error) {
			res := p.decode(ctx, pageIndex)
			p.reg.NotifyDecoded(pageIndex, res)
			return nil, nil
		})
	}()
}

func (p *Pipeline) decode(ctx context.Context, pageIndex int) DecodeResult {
	// A decode that completed between the caller's cache check and the
	// singleflight entry must not run again.
	p.mu.Lock()
	cached := p.cache[pageIndex]
	p.mu.Unlock()
	if cached != nil {
		return DecodeResult{Page: cached}
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return DecodeResult{Err: &DecodeError{Page: pageIndex, Err: err}}
	}
	defer p.sem.Release(1)

	var page *document.DecodedPage
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.DecodeTimeout)
		page, err = p.doc.DecodePage(attemptCtx, pageIndex)
		cancel()
		if err == nil {
			break
		}
		if attempt < p.cfg.MaxRetries {
			logger.Debug(fmt.Sprintf("Retrying page decode: page=%d attempt=%d err=%v", pageIndex, attempt, err), true)
		}
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Page decode failed: page=%d err=%v", pageIndex, err))
		return DecodeResult{Err: &DecodeError{Page: pageIndex, Err: err}}
	}

	p.mu.Lock()
	p.cache[pageIndex] = page
	p.mu.Unlock()

	logger.Debug(fmt.Sprintf("Page decoded: page=%d size=%dx%d", pageIndex, page.Width(), page.Height()), true)
	return DecodeResult{Page: page}
}
