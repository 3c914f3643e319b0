// Package gate fetches release archives through the upstream click-through
// license page.
//
// The gate endpoint is unreliable in one specific way: instead of the
// requested archive it sometimes serves an HTML interstitial that embeds
// the real download link in one of several shapes. A fetch therefore
// validates the payload by opening it as an archive, and on HTML falls
// back to an ordered list of link-mining strategies followed by a single
// re-fetch with the Referer header set. Every failure mode is non-fatal
// and reported as the archive simply being absent.
package gate
