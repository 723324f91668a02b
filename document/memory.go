// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package document

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"
)

// Memory is an in-memory document built from pre-made page images. It backs
// the example binary and the pipeline tests: decodes can be delayed or forced
// to fail per page, and every decode call is counted.
type Memory struct {
	pages []image.Image

	mu    sync.Mutex
	fail  map[int]error
	calls map[int]int
	delay time.Duration

	closed bool
}

var _ Document = (*Memory)(nil)

// NewMemory builds a document whose pages are the given images, in order.
func NewMemory(pages ...image.Image) *Memory {
	return &Memory{
		pages: pages,
		fail:  make(map[int]error),
		calls: make(map[int]int),
	}
}

// BlankPage returns a uniformly filled page image.
func BlankPage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// FailPage makes every decode of the given page return err.
func (m *Memory) FailPage(index int, err error) {
	m.mu.Lock()
	m.fail[index] = err
	m.mu.Unlock()
}

// SetDecodeDelay makes every decode sleep for d before completing, to widen
// race windows in tests.
func (m *Memory) SetDecodeDelay(d time.Duration) {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

// DecodeCalls reports how many times the given page was decoded.
func (m *Memory) DecodeCalls(index int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[index]
}

func (m *Memory) PageCount() int { return len(m.pages) }

func (m *Memory) PageSize(index int) (int, int, error) {
	if index < 0 || index >= len(m.pages) {
		return 0, 0, fmt.Errorf("page %d: %w", index, ErrPageOutOfRange)
	}
	b := m.pages[index].Bounds()
	return b.Dx(), b.Dy(), nil
}

func (m *Memory) DecodePage(ctx context.Context, index int) (*DecodedPage, error) {
	if index < 0 || index >= len(m.pages) {
		return nil, fmt.Errorf("page %d: %w", index, ErrPageOutOfRange)
	}

	m.mu.Lock()
	m.calls[index]++
	delay := m.delay
	failErr := m.fail[index]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failErr != nil {
		return nil, failErr
	}
	return NewDecodedPage(index, m.pages[index]), nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
