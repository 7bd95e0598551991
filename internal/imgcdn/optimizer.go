// Package imgcdn builds on-the-fly image transformation URLs for the edge
// image CDN. No network calls happen here; the CDN resizes on request.
package imgcdn

import (
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is the path of the edge image transformation service.
const Endpoint = "/.netlify/images"

// Options controls the requested transformation.
type Options struct {
	Width   int
	Height  int
	Fit     string // contain, cover or fill; default cover
	Format  string // avif, webp, jpg or png; default webp
	Quality int    // 1-100; default 80
}

// URL returns a transform URL for src carrying the original URL and the
// transform parameters as query parameters. An empty src yields "".
func URL(src string, opts Options) string {
	if src == "" {
		return ""
	}
	if opts.Fit == "" {
		opts.Fit = "cover"
	}
	if opts.Format == "" {
		opts.Format = "webp"
	}
	if opts.Quality == 0 {
		opts.Quality = 80
	}

	var b strings.Builder
	b.WriteString(Endpoint)
	b.WriteString("?url=")
	b.WriteString(url.QueryEscape(src))
	if opts.Width > 0 {
		b.WriteString("&w=" + strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		b.WriteString("&h=" + strconv.Itoa(opts.Height))
	}
	b.WriteString("&fit=" + url.QueryEscape(opts.Fit))
	b.WriteString("&fm=" + url.QueryEscape(opts.Format))
	b.WriteString("&q=" + strconv.Itoa(opts.Quality))
	return b.String()
}

// Presets for the common display sizes.
var presets = map[string]Options{
	// Card thumbnails in the gallery grid.
	"thumbnail": {Width: 400, Height: 300, Fit: "cover", Format: "webp", Quality: 75},
	// Detail views.
	"medium": {Width: 800, Height: 600, Fit: "contain", Format: "webp", Quality: 80},
	// Hero images.
	"hero": {Width: 1200, Height: 800, Fit: "cover", Format: "webp", Quality: 85},
	// Full resolution on the photo detail page.
	"full": {Width: 1600, Fit: "contain", Format: "webp", Quality: 85},
}

// PresetURL returns a transform URL using a named preset. Unknown preset
// names fall back to thumbnail.
func PresetURL(src, preset string) string {
	opts, ok := presets[preset]
	if !ok {
		opts = presets["thumbnail"]
	}
	return URL(src, opts)
}
