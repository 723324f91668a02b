// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pagesurf

import (
	"fmt"
	"sync"

	"github.com/pagesurf/pagesurf/logger"
)

// ZoomObserver receives the two zoom signals. Intermediate factor changes
// during a gesture are never delivered: rendering the content tier at every
// frame of a pinch would be prohibitively expensive, so surfaces only learn
// where a gesture begins and where it settles.
type ZoomObserver interface {
	ZoomStarted()
	ZoomFinished(factor float64)
}

// ZoomFactorSource is the per-session zoom event source. The input layer
// calls GestureStarted/GestureFinished on the interaction thread; live
// content surfaces observe the transitions. Detaching an observer
// mid-gesture is safe and stops all further delivery to it.
type ZoomFactorSource struct {
	mu            sync.Mutex
	observers     []ZoomObserver
	factor        float64
	transitioning bool
}

func NewZoomFactorSource() *ZoomFactorSource {
	return &ZoomFactorSource{factor: 1.0}
}

// State returns the current factor and whether a gesture is in progress.
func (z *ZoomFactorSource) State() (factor float64, transitioning bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.factor, z.transitioning
}

// Attach registers an observer. Attaching an already-attached observer is a
// no-op.
func (z *ZoomFactorSource) Attach(obs ZoomObserver) {
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, o := range z.observers {
		if o == obs {
			return
		}
	}
	z.observers = append(z.observers, obs)
}

// Detach removes an observer; a detached observer receives no further
// events. Unknown observers are a no-op.
func (z *ZoomFactorSource) Detach(obs ZoomObserver) {
	z.mu.Lock()
	defer z.mu.Unlock()
	for i, o := range z.observers {
		if o == obs {
			z.observers = append(z.observers[:i], z.observers[i+1:]...)
			return
		}
	}
}

// GestureStarted marks the beginning of a continuous zoom gesture and emits
// ZoomStarted once. A second start before the matching finish is ignored.
func (z *ZoomFactorSource) GestureStarted() {
	z.mu.Lock()
	if z.transitioning {
		z.mu.Unlock()
		return
	}
	z.transitioning = true
	z.mu.Unlock()

	logger.Debug("Zoom gesture started", true)
	z.emit(func(obs ZoomObserver) { obs.ZoomStarted() })
}

// GestureFinished marks the gesture settling at factor and emits
// ZoomFinished once. A finish with no matching start only records the
// factor.
func (z *ZoomFactorSource) GestureFinished(factor float64) {
	z.mu.Lock()
	wasTransitioning := z.transitioning
	z.transitioning = false
	z.factor = factor
	z.mu.Unlock()

	if !wasTransitioning {
		logger.Debug(fmt.Sprintf("Zoom factor set without gesture: factor=%.2f", factor), true)
		return
	}
	logger.Debug(fmt.Sprintf("Zoom gesture finished: factor=%.2f", factor), true)
	z.emit(func(obs ZoomObserver) { obs.ZoomFinished(factor) })
}

// emit calls fire for every observer that is still attached at the moment of
// its own callback. Callbacks run outside the lock so observers may detach
// (or detach each other) while an emission is in progress.
func (z *ZoomFactorSource) emit(fire func(ZoomObserver)) {
	z.mu.Lock()
	snapshot := make([]ZoomObserver, len(z.observers))
	copy(snapshot, z.observers)
	z.mu.Unlock()

	for _, obs := range snapshot {
		if z.attached(obs) {
			fire(obs)
		}
	}
}

func (z *ZoomFactorSource) attached(obs ZoomObserver) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	for _, o := range z.observers {
		if o == obs {
			return true
		}
	}
	return false
}
