// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Command pagesurf opens a page-image archive (or a synthetic document),
// binds one page slot, simulates a pinch-zoom gesture and writes every
// attached surface out as a PNG. Useful for eyeballing the pipeline without
// a host view layer.
package main

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/pagesurf/pagesurf"
	"github.com/pagesurf/pagesurf/document"
	"github.com/pagesurf/pagesurf/logger"
	"github.com/pagesurf/pagesurf/tracer"
)

type options struct {
	Archive string  `short:"a" long:"archive" description:"zip archive of page images; a synthetic document is used when omitted"`
	Page    int     `short:"p" long:"page" default:"0" description:"page index to bind"`
	Zoom    float64 `short:"z" long:"zoom" default:"2.0" description:"final zoom factor of the simulated gesture"`
	OutDir  string  `short:"o" long:"out" default:"." description:"directory for the rendered PNGs"`
	Verbose bool    `short:"v" long:"verbose" description:"debug logging"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	log := logrus.New()
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(opts, log); err != nil {
		tracer.Flush()
		log.Fatal(err)
	}
	if opts.Verbose {
		tracer.Flush()
	}
}

func run(opts options, log *logrus.Logger) error {
	var doc document.Document
	var err error
	if opts.Archive != "" {
		doc, err = document.OpenArchive(opts.Archive)
		if err != nil {
			return err
		}
	} else {
		doc = document.NewMemory(
			document.BlankPage(800, 1200, color.White),
			document.BlankPage(800, 1200, color.RGBA{R: 0xf0, G: 0xf0, B: 0xff, A: 0xff}),
		)
	}

	cfg := pagesurf.NewDefaultConfig()
	cfg.DebugOn = opts.Verbose
	cfg.Logger = func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		entry := log.WithField("component", "pagesurf")
		switch level {
		case logger.ErrorLevel:
			entry.Error(msg, keyvals)
		case logger.InfoLevel:
			entry.Info(msg, keyvals)
		default:
			entry.Debug(msg, keyvals)
		}
	}

	session, err := pagesurf.OpenSession(doc, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	baseW, baseH, err := doc.PageSize(opts.Page)
	if err != nil {
		return err
	}

	attached := make(chan *pagesurf.Surface, 8)
	slot := session.NewController(func(tier pagesurf.Tier, s *pagesurf.Surface) {
		if s == nil {
			log.Infof("%s detached", tier)
			return
		}
		log.Infof("%s attached: %dx%d", tier, s.Width(), s.Height())
		attached <- s
	})

	session.Invoke(func() { slot.Bind(opts.Page, baseW, baseH) })

	// Wait for thumbnail + initial content.
	if err := save(opts.OutDir, "thumbnail.png", waitSurface(attached)); err != nil {
		return err
	}
	if err := save(opts.OutDir, "content.png", waitSurface(attached)); err != nil {
		return err
	}

	// Simulated pinch: content goes away, thumbnail carries the slot, then
	// the content comes back at the settled factor.
	session.Invoke(func() { session.Zoom().GestureStarted() })
	session.Invoke(func() { session.Zoom().GestureFinished(opts.Zoom) })

	if err := save(opts.OutDir, fmt.Sprintf("content_%.2fx.png", opts.Zoom), waitSurface(attached)); err != nil {
		return err
	}
	return nil
}

func waitSurface(ch <-chan *pagesurf.Surface) *pagesurf.Surface {
	select {
	case s := <-ch:
		return s
	case <-time.After(30 * time.Second):
		return nil
	}
}

func save(dir, name string, s *pagesurf.Surface) error {
	if s == nil || s.Released() {
		return fmt.Errorf("no surface for %s", name)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, s.Image())
}
