// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package pdfinfo exposes a PDF file as a pagesurf document source. Page
// count and page geometry come from pdfcpu; decoded pages are blank leaves at
// the true page dimensions. Content rasterization for PDF is handled outside
// this pipeline, so the blank leaf is the honest placeholder: surfaces get
// the correct aspect ratio and size at every zoom factor.
package pdfinfo

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pagesurf/pagesurf/document"
	"github.com/pagesurf/pagesurf/logger"
)

// pixelsPerPoint maps PDF user-space points (72/inch) to screen pixels at
// the conventional 96 dpi.
const pixelsPerPoint = 96.0 / 72.0

// Document is a PDF-backed page source.
type Document struct {
	path string
	dims [][2]int // pixel dimensions per page
}

var _ document.Document = (*Document)(nil)

// Open reads the PDF's page tree and records per-page pixel geometry.
func Open(path string) (*Document, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page count of %s: %w", path, err)
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page dimensions of %s: %w", path, err)
	}
	if len(dims) != count {
		return nil, fmt.Errorf("%s: %d pages but %d media boxes", path, count, len(dims))
	}

	d := &Document{path: path, dims: make([][2]int, 0, count)}
	for _, dim := range dims {
		w := int(math.Round(dim.Width * pixelsPerPoint))
		h := int(math.Round(dim.Height * pixelsPerPoint))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		d.dims = append(d.dims, [2]int{w, h})
	}
	logger.Debug(fmt.Sprintf("PDF opened: path=%s pages=%d", path, count), true)
	return d, nil
}

func (d *Document) PageCount() int { return len(d.dims) }

func (d *Document) PageSize(index int) (int, int, error) {
	if index < 0 || index >= len(d.dims) {
		return 0, 0, fmt.Errorf("page %d: %w", index, document.ErrPageOutOfRange)
	}
	return d.dims[index][0], d.dims[index][1], nil
}

func (d *Document) DecodePage(ctx context.Context, index int) (*document.DecodedPage, error) {
	if index < 0 || index >= len(d.dims) {
		return nil, fmt.Errorf("page %d: %w", index, document.ErrPageOutOfRange)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := d.dims[index][0], d.dims[index][1]
	return document.NewDecodedPage(index, document.BlankPage(w, h, color.White)), nil
}

func (d *Document) Close() error { return nil }
