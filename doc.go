// Copyright © 2026, the pagesurf authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package pagesurf renders pages of a paginated document into on-screen
// bitmap surfaces at interactive zoom levels, decoding page content
// asynchronously and never blocking the interaction thread.
//
// The pipeline sits between "a page is needed at some size" and "a
// displayable surface exists":
//
//   - A PageSurfaceController is bound to a page slot and subscribes to the
//     DecodeLoadRegistry for that page.
//   - The decode Pipeline decodes the page off the interaction thread, at
//     most once per page, with bounded concurrency.
//   - The registry delivers the result back on the interaction thread to
//     every still-subscribed slot.
//   - The controller renders two surface tiers through the shared
//     RenderEngine: a cheap zoom-independent thumbnail and an expensive
//     content surface sized base*zoomFactor.
//   - During a pinch gesture the content surface is torn down and the
//     thumbnail carries the slot; when the gesture settles the content
//     surface is rebuilt at the new factor from the already-decoded page.
//
// Page slots are recycled: rebinding a slot to a new page unsubscribes the
// old token first, so a decode of the old page can never paint into a slot
// that has moved on.
package pagesurf
