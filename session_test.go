// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesurf/pagesurf/document"
)

func TestOpenSession_RejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxConcurrentDecodes = 0
	_, err := OpenSession(document.NewMemory(), cfg)
	assert.Error(t, err)
}

func TestOpenSession_NilConfigUsesDefaults(t *testing.T) {
	s, err := OpenSession(document.NewMemory(document.BlankPage(10, 10, color.White)), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	require.NoError(t, s.Close())
}

func TestSession_CloseTearsDownControllers(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(100, 100, color.White))
	s, err := OpenSession(doc, nil)
	require.NoError(t, err)

	rec := &surfaceRecorder{}
	slot := s.NewController(rec.attach)
	s.Invoke(func() { slot.Bind(0, 100, 100) })
	waitAttached(t, rec, TierContent, 1)
	content := rec.current(TierContent)

	require.NoError(t, s.Close())
	assert.True(t, content.Released())
	assert.Nil(t, rec.current(TierContent))
	assert.Nil(t, rec.current(TierThumbnail))

	// Idempotent.
	require.NoError(t, s.Close())
}

func TestSession_CloseCancelsInFlightDecode(t *testing.T) {
	doc := document.NewMemory(document.BlankPage(100, 100, color.White))
	doc.SetDecodeDelay(5 * time.Second)
	s, err := OpenSession(doc, nil)
	require.NoError(t, err)

	slot := s.NewController(nil)
	s.Invoke(func() { slot.Bind(0, 100, 100) })

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on an in-flight decode")
	}
}
