// Package webp holds the shared vocabulary of the WebP container: chunk tags,
// size limits, VP8X feature flags, the animation blend and dispose methods and
// the iterator a demuxer fills for every frame.
//
// Names follow libwebp so the rest of the module reads like its C counterpart:
//
//	var iter webp.WebPIterator
//	if dmux.GetFrame(1, &iter) {
//		for {
//			// ... decode iter.Fragment, place it at iter.XOffset/iter.YOffset
//			if !dmux.NextFrame(&iter) {
//				break
//			}
//		}
//	}
package webp
