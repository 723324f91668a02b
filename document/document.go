// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package document defines the paginated document sources consumed by the
// surface pipeline. A Document hands out immutable DecodedPage values; how
// the page bytes turn into pixels is the source's business, everything after
// that (surfaces, zoom, scheduling) belongs to the pagesurf package.
package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrPageOutOfRange is returned for page indices outside [0, PageCount).
var ErrPageOutOfRange = errors.New("page index out of range")

// Document is a handle to an open paginated document. The handle owns the
// decoded representation of the whole document and is closed when the viewing
// session ends. Page indices are zero-based.
type Document interface {
	// PageCount reports the number of pages.
	PageCount() int

	// PageSize returns the natural pixel dimensions of a page without
	// decoding its content.
	PageSize(index int) (w, h int, err error)

	// DecodePage decodes one page. Implementations must tolerate concurrent
	// calls for different pages and honor ctx cancellation.
	DecodePage(ctx context.Context, index int) (*DecodedPage, error)

	Close() error
}

// DecodedPage is the decoded form of a single page: fixed dimensions plus the
// ability to hand out arbitrary sub-regions for rasterization. Immutable
// after creation, so it may be shared across controllers and cached freely.
type DecodedPage struct {
	index int
	img   image.Image
}

// NewDecodedPage wraps a decoded page image. The caller must not mutate img
// afterwards.
func NewDecodedPage(index int, img image.Image) *DecodedPage {
	return &DecodedPage{index: index, img: img}
}

func (p *DecodedPage) Index() int { return p.index }

func (p *DecodedPage) Width() int { return p.img.Bounds().Dx() }

func (p *DecodedPage) Height() int { return p.img.Bounds().Dy() }

// Image returns the full decoded page image.
func (p *DecodedPage) Image() image.Image { return p.img }

// Region returns the given sub-region of the page, clipped to the page
// bounds. The result shares pixels with the page where the underlying image
// supports sub-imaging and must be treated as read-only.
func (p *DecodedPage) Region(r image.Rectangle) image.Image {
	r = r.Intersect(p.img.Bounds())
	if sub, ok := p.img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), p.img, r.Min, draw.Src)
	return out
}

func (p *DecodedPage) String() string {
	return fmt.Sprintf("page %d (%dx%d)", p.index, p.Width(), p.Height())
}
