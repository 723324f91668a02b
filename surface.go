// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Tier distinguishes the two surface classes a page slot can carry.
type Tier int

const (
	// TierThumbnail is the cheap low-resolution surface. Its size depends
	// only on the page's base size, never on the zoom factor, so it stays
	// attached across a whole zoom gesture.
	TierThumbnail Tier = iota

	// TierContent is the expensive full-resolution surface, sized to
	// base*zoomFactor at the instant it was created. It is discarded on
	// zoom start and rebuilt after the gesture settles.
	TierContent
)

func (t Tier) String() string {
	switch t {
	case TierThumbnail:
		return "thumbnail"
	case TierContent:
		return "content"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Surface is a fixed-size pixel buffer bound to one page. The buffer is
// exclusively owned by the surface and released deterministically on
// teardown; it never outlives the surface.
type Surface struct {
	tier      Tier
	pageIndex int
	buf       *image.RGBA
}

func newSurface(tier Tier, pageIndex int, buf *image.RGBA) *Surface {
	return &Surface{tier: tier, pageIndex: pageIndex, buf: buf}
}

// newPlaceholder builds a flat light-gray surface, used when a page's decode
// fails so the slot shows something other than an eternal loading state.
func newPlaceholder(tier Tier, pageIndex, w, h int) *Surface {
	buf := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(buf, buf.Bounds(), image.NewUniform(color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}), image.Point{}, draw.Src)
	return newSurface(tier, pageIndex, buf)
}

func (s *Surface) Tier() Tier { return s.tier }

func (s *Surface) PageIndex() int { return s.pageIndex }

func (s *Surface) Width() int {
	if s.buf == nil {
		return 0
	}
	return s.buf.Bounds().Dx()
}

func (s *Surface) Height() int {
	if s.buf == nil {
		return 0
	}
	return s.buf.Bounds().Dy()
}

// Image returns the pixel buffer, or nil after Release.
func (s *Surface) Image() *image.RGBA { return s.buf }

// Released reports whether the pixel buffer has been dropped.
func (s *Surface) Released() bool { return s.buf == nil }

// Release drops the pixel buffer. Idempotent.
func (s *Surface) Release() {
	s.buf = nil
}

func (s *Surface) String() string {
	return fmt.Sprintf("%s surface: page=%d size=%dx%d released=%v", s.tier, s.pageIndex, s.Width(), s.Height(), s.Released())
}
