// Package sitemap serializes the site's routes into sitemap XML.
package sitemap

import (
	"encoding/xml"
	"strconv"
	"time"
)

// staticRoutes are the fixed pages of the site, relative to the base URL.
var staticRoutes = []string{"", "/gallery", "/about", "/contact"}

// Entry identifies a photo page.
type Entry struct {
	ID        int64
	UpdatedAt time.Time
}

type urlset struct {
	XMLName        xml.Name `xml:"urlset"`
	XMLNS          string   `xml:"xmlns,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	URLs           []urlEntry
}

type urlEntry struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	LastMod    string   `xml:"lastmod"`
	ChangeFreq string   `xml:"changefreq"`
	Priority   string   `xml:"priority"`
}

// Build renders the sitemap for the static routes plus one photo page per
// entry. now stamps the static routes' lastmod.
func Build(baseURL string, photos []Entry, now time.Time) ([]byte, error) {
	set := urlset{
		XMLNS:          "http://www.sitemaps.org/schemas/sitemap/0.9",
		XSI:            "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://www.sitemaps.org/schemas/sitemap/0.9 http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd",
	}

	for _, route := range staticRoutes {
		priority := "0.8"
		if route == "" {
			priority = "1.0"
		}
		set.URLs = append(set.URLs, urlEntry{
			Loc:        baseURL + route,
			LastMod:    now.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   priority,
		})
	}

	for _, p := range photos {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        baseURL + "/photo/" + strconv.FormatInt(p.ID, 10),
			LastMod:    p.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
