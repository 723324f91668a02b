// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package document

import (
	"archive/zip"
	"context"
	"fmt"
	"image"
	"path"
	"sort"
	"strings"

	// Page image formats supported inside archives.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pagesurf/pagesurf/logger"
)

// Archive reads a zip archive of page images (the CBZ convention: one image
// per page, pages ordered by file name). Entries that are not images are
// ignored.
type Archive struct {
	rc    *zip.ReadCloser
	pages []*zip.File
}

var _ Document = (*Archive)(nil)

// OpenArchive opens a page-image archive at path.
func OpenArchive(name string) (*Archive, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", name, err)
	}

	var pages []*zip.File
	for _, f := range rc.File {
		if f.FileInfo().IsDir() || !isPageImage(f.Name) {
			continue
		}
		pages = append(pages, f)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Name < pages[j].Name })

	logger.Debug(fmt.Sprintf("Archive opened: path=%s pages=%d", name, len(pages)), true)
	return &Archive{rc: rc, pages: pages}, nil
}

func isPageImage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func (a *Archive) PageCount() int { return len(a.pages) }

func (a *Archive) PageSize(index int) (int, int, error) {
	if index < 0 || index >= len(a.pages) {
		return 0, 0, fmt.Errorf("page %d: %w", index, ErrPageOutOfRange)
	}
	r, err := a.pages[index].Open()
	if err != nil {
		return 0, 0, fmt.Errorf("open page %d: %w", index, err)
	}
	defer r.Close()
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("read page %d header: %w", index, err)
	}
	return cfg.Width, cfg.Height, nil
}

func (a *Archive) DecodePage(ctx context.Context, index int) (*DecodedPage, error) {
	if index < 0 || index >= len(a.pages) {
		return nil, fmt.Errorf("page %d: %w", index, ErrPageOutOfRange)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := a.pages[index]
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open page %d (%s): %w", index, f.Name, err)
	}
	defer r.Close()

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode page %d (%s): %w", index, f.Name, err)
	}
	logger.Debug(fmt.Sprintf("Archive page decoded: index=%d entry=%s format=%s", index, f.Name, format), true)
	return NewDecodedPage(index, img), nil
}

func (a *Archive) Close() error {
	return a.rc.Close()
}
