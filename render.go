// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/pagesurf/pagesurf/document"
	"github.com/pagesurf/pagesurf/logger"
)

// maxSurfacePixels bounds a single render target to 64M pixels (256 MB of
// RGBA). Requests above it fail with ErrSurfaceTooLarge.
const maxSurfacePixels = 1 << 26

// RenderEngine rasterizes decoded pages into pixel buffers. It holds no
// per-call state: the same inputs produce the same output, every call
// allocates its own buffer, and concurrent calls from different controllers
// never interfere. All controllers share the one process-wide instance.
type RenderEngine struct{}

var (
	engineOnce sync.Once
	engine     *RenderEngine
)

// Engine returns the shared render engine, constructing it on first use.
// There is no explicit teardown; the engine lives for the process.
func Engine() *RenderEngine {
	engineOnce.Do(func() {
		engine = &RenderEngine{}
		logger.Debug("Render engine initialized", true)
	})
	return engine
}

// RenderToBuffer rasterizes page (or srcRegion of it, in page pixel
// coordinates) into a new buffer of exactly targetW x targetH pixels.
// Zero or negative target dimensions are a caller bug.
func (e *RenderEngine) RenderToBuffer(page *document.DecodedPage, targetW, targetH int, srcRegion *image.Rectangle) (*image.RGBA, error) {
	if page == nil || targetW <= 0 || targetH <= 0 {
		logicErrorf("render with invalid arguments: page=%v target=%dx%d", page, targetW, targetH)
		return nil, fmt.Errorf("render target %dx%d invalid", targetW, targetH)
	}
	if targetW*targetH > maxSurfacePixels {
		return nil, fmt.Errorf("render target %dx%d: %w", targetW, targetH, ErrSurfaceTooLarge)
	}

	src := page.Image()
	if srcRegion != nil {
		src = page.Region(*srcRegion)
	}
	srcBounds := src.Bounds()
	if srcBounds.Empty() {
		return nil, fmt.Errorf("render source region empty for %s", page)
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	scalerFor(srcBounds, dst.Bounds()).Scale(dst, dst.Bounds(), src, srcBounds, draw.Src, nil)

	logger.Debug(fmt.Sprintf("Rendered page: page=%d src=%dx%d dst=%dx%d", page.Index(), srcBounds.Dx(), srcBounds.Dy(), targetW, targetH), true)
	return dst, nil
}

// scalerFor picks the interpolation kernel. Steep downscales (thumbnails)
// take the cheap kernel; anything near or above source resolution gets the
// high-quality one.
func scalerFor(src, dst image.Rectangle) draw.Scaler {
	if dst.Dx()*8 <= src.Dx() && dst.Dy()*8 <= src.Dy() {
		return draw.ApproxBiLinear
	}
	return draw.CatmullRom
}
