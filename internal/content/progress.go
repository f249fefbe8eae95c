// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

// ReadingProgress returns how far through an article the reader has
// scrolled, as a percentage in [0, 100]. When the page has no scroll room
// (totalHeight <= viewportHeight) the whole article is visible and
// progress is 100.
func ReadingProgress(scrollOffset, viewportHeight, totalHeight float64) float64 {
	scrollable := totalHeight - viewportHeight
	if scrollable <= 0 {
		return 100
	}
	return clamp(scrollOffset/scrollable*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v != v: // NaN
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
