// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pagesurf/pagesurf/document"
	"github.com/pagesurf/pagesurf/logger"
)

// Session is one document viewing session: it owns the document handle, the
// interaction dispatcher, the decode registry and pipeline, and the zoom
// source shared by every page slot. Closing the session tears down all
// controllers and closes the document.
type Session struct {
	id   string
	cfg  *Config
	doc  document.Document
	disp *dispatcher
	reg  *DecodeLoadRegistry
	pipe *Pipeline
	zoom *ZoomFactorSource

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	controllers []*PageSurfaceController
	closed      bool
}

// OpenSession validates the config and starts a viewing session over doc.
// The session takes ownership of doc and closes it on Close.
func OpenSession(doc document.Document, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}
	failFast.Store(cfg.DebugOn)

	ctx, cancel := context.WithCancel(context.Background())
	disp := newDispatcher()
	reg := newDecodeLoadRegistry(disp)

	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		doc:    doc,
		disp:   disp,
		reg:    reg,
		pipe:   newPipeline(doc, reg, cfg),
		zoom:   NewZoomFactorSource(),
		ctx:    ctx,
		cancel: cancel,
	}

	logger.Debug(fmt.Sprintf("Session opened: id=%s pages=%d max_concurrent_decodes=%d thumbnail_divisor=%d",
		s.id, doc.PageCount(), cfg.MaxConcurrentDecodes, cfg.ThumbnailDivisor), true)
	return s, nil
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// Zoom returns the session's zoom source. Gesture events must be delivered
// on the interaction thread (use Post or Invoke).
func (s *Session) Zoom() *ZoomFactorSource { return s.zoom }

// Registry exposes the decode registry, mainly for instrumentation.
func (s *Session) Registry() *DecodeLoadRegistry { return s.reg }

// NewController creates a page slot controller. attach may be nil if the
// caller polls Thumbnail/Content instead of listening for changes.
func (s *Session) NewController(attach AttachFunc) *PageSurfaceController {
	c := &PageSurfaceController{
		reg:    s.reg,
		zoom:   s.zoom,
		engine: Engine(),
		cfg:    s.cfg,
		attach: attach,
	}
	c.requestDecode = func(pageIndex int) { s.pipe.Request(s.ctx, pageIndex) }

	s.mu.Lock()
	s.controllers = append(s.controllers, c)
	s.mu.Unlock()
	return c
}

// Post queues fn on the interaction thread and returns immediately.
func (s *Session) Post(fn func()) { s.disp.Post(fn) }

// Invoke runs fn on the interaction thread and waits for it. Must not be
// called from the interaction thread itself.
func (s *Session) Invoke(fn func()) { s.disp.Invoke(fn) }

// Close unbinds every controller, stops the interaction thread, cancels any
// in-flight decodes and closes the document. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	controllers := s.controllers
	s.mu.Unlock()

	s.disp.Invoke(func() {
		for _, c := range controllers {
			c.Unbind()
		}
	})
	s.cancel()
	s.disp.Close()

	err := s.doc.Close()
	logger.Debug(fmt.Sprintf("Session closed: id=%s", s.id), true)
	return err
}
