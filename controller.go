// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"errors"
	"fmt"
	"math"

	"github.com/pagesurf/pagesurf/document"
	"github.com/pagesurf/pagesurf/logger"
)

// AttachFunc is how a controller tells the view layer about surface changes.
// A nil surface means the tier was detached. Always invoked on the
// interaction thread.
type AttachFunc func(tier Tier, s *Surface)

// PageSurfaceController drives one visible page slot. It subscribes to the
// decode registry when bound, builds the thumbnail and content surfaces when
// the page arrives, and tears down/rebuilds the content surface around zoom
// gestures using the already-decoded page — a page is decoded at most once
// per binding, no matter how many gestures happen.
//
// All methods must run on the session's interaction thread; decode
// completions arrive there via the registry, zoom events via the session's
// zoom source.
//
// Lifecycle: Unbound → AwaitingDecode → Decoded (or Failed), torn down on
// rebind or Unbind, after which a new Bind restarts the cycle.
type PageSurfaceController struct {
	reg    *DecodeLoadRegistry
	zoom   *ZoomFactorSource
	engine *RenderEngine
	cfg    *Config
	attach AttachFunc

	requestDecode func(pageIndex int)

	bound        bool
	pageIndex    int
	baseW, baseH int
	token        Token
	decoded      *document.DecodedPage
	thumb        *Surface
	content      *Surface
	failed       bool
}

// Bind points the slot at a page. Any previous binding is torn down first:
// the old subscription is dropped (so a decode of the old page can never
// leak into this slot), both surfaces are released, and the old decoded page
// reference is cleared.
func (c *PageSurfaceController) Bind(pageIndex, baseW, baseH int) {
	c.teardown()

	c.bound = true
	c.pageIndex = pageIndex
	c.baseW, c.baseH = baseW, baseH
	c.failed = false

	c.subscribe()
	c.zoom.Attach(c)
	c.requestDecode(pageIndex)

	logger.Debug(fmt.Sprintf("Slot bound: page=%d base=%dx%d token=%d", pageIndex, baseW, baseH, c.token), true)
}

// Unbind tears the slot down completely. Idempotent.
func (c *PageSurfaceController) Unbind() {
	c.teardown()
}

// Bound reports whether the slot currently targets a page.
func (c *PageSurfaceController) Bound() bool { return c.bound }

// Thumbnail returns the attached thumbnail surface, or nil.
func (c *PageSurfaceController) Thumbnail() *Surface { return c.thumb }

// Content returns the attached content surface, or nil.
func (c *PageSurfaceController) Content() *Surface { return c.content }

// Failed reports whether the bound page's decode ended in an error.
func (c *PageSurfaceController) Failed() bool { return c.failed }

func (c *PageSurfaceController) subscribe() {
	if c.token != 0 {
		// At most one outstanding subscription per controller; a second
		// subscribe without an unsubscribe is a caller bug.
		logicErrorf("page %d: subscribe while token %d is outstanding", c.pageIndex, c.token)
		c.reg.Unsubscribe(c.token)
	}
	c.token = c.reg.Subscribe(c.pageIndex, c.onDecoded)
}

// onDecoded is the registry callback; its delivery consumed the token.
func (c *PageSurfaceController) onDecoded(res DecodeResult) {
	c.token = 0
	if !c.bound {
		return
	}

	if res.Failed() {
		c.failed = true
		logger.Error(fmt.Sprintf("Slot decode failed: page=%d err=%v", c.pageIndex, res.Err))
		// An error placeholder instead of an eternal loading state.
		w, h := c.thumbSize()
		c.setSurface(TierThumbnail, newPlaceholder(TierThumbnail, c.pageIndex, w, h))
		return
	}

	c.decoded = res.Page
	c.renderThumbnail()

	if factor, transitioning := c.zoom.State(); !transitioning {
		c.renderContent(factor)
	}
}

// ZoomStarted drops the content surface for the duration of the gesture.
// The thumbnail stays attached, keeping the slot visually populated.
func (c *PageSurfaceController) ZoomStarted() {
	if !c.bound || c.content == nil {
		return
	}
	c.setSurface(TierContent, nil)
}

// ZoomFinished rebuilds the content surface at the settled factor from the
// page decoded earlier. No re-decode, no re-subscription.
func (c *PageSurfaceController) ZoomFinished(factor float64) {
	if !c.bound || c.decoded == nil {
		return
	}
	c.renderContent(factor)
}

func (c *PageSurfaceController) renderThumbnail() {
	w, h := c.thumbSize()
	buf, err := c.engine.RenderToBuffer(c.decoded, w, h, nil)
	if err != nil {
		c.skipAttach(TierThumbnail, err)
		return
	}
	c.setSurface(TierThumbnail, newSurface(TierThumbnail, c.pageIndex, buf))
}

func (c *PageSurfaceController) renderContent(factor float64) {
	w := scaled(c.baseW, factor)
	h := scaled(c.baseH, factor)
	buf, err := c.engine.RenderToBuffer(c.decoded, w, h, nil)
	if err != nil {
		c.skipAttach(TierContent, err)
		return
	}
	c.setSurface(TierContent, newSurface(TierContent, c.pageIndex, buf))
}

// skipAttach handles a failed render. Resource exhaustion is recoverable:
// the attachment is skipped and the next bind or zoom settle retries.
func (c *PageSurfaceController) skipAttach(tier Tier, err error) {
	if errors.Is(err, ErrSurfaceTooLarge) {
		logger.Error(fmt.Sprintf("Skipping %s attachment: page=%d err=%v", tier, c.pageIndex, err))
		return
	}
	logger.Error(fmt.Sprintf("Render failed: tier=%s page=%d err=%v", tier, c.pageIndex, err))
}

// setSurface swaps the surface for a tier, releasing the old buffer and
// reporting the change to the view layer.
func (c *PageSurfaceController) setSurface(tier Tier, s *Surface) {
	var old *Surface
	switch tier {
	case TierThumbnail:
		old, c.thumb = c.thumb, s
	case TierContent:
		old, c.content = c.content, s
	}
	if old != nil {
		old.Release()
	}
	if c.attach != nil {
		c.attach(tier, s)
	}
}

func (c *PageSurfaceController) teardown() {
	if !c.bound && c.token == 0 && c.thumb == nil && c.content == nil {
		return
	}

	// Unsubscribe with the still-valid token; a no-op if the notification
	// already consumed it.
	if c.token != 0 {
		c.reg.Unsubscribe(c.token)
		c.token = 0
	}
	c.zoom.Detach(c)

	if c.thumb != nil {
		c.setSurface(TierThumbnail, nil)
	}
	if c.content != nil {
		c.setSurface(TierContent, nil)
	}
	c.decoded = nil
	c.failed = false
	c.bound = false

	logger.Debug(fmt.Sprintf("Slot torn down: page=%d", c.pageIndex), true)
}

func (c *PageSurfaceController) thumbSize() (int, int) {
	w := c.baseW / c.cfg.ThumbnailDivisor
	h := c.baseH / c.cfg.ThumbnailDivisor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func scaled(base int, factor float64) int {
	v := int(math.Round(float64(base) * factor))
	if v < 1 {
		v = 1
	}
	return v
}
