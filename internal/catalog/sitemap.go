// Wikithat - Encyclopedia Topic Comparison Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikithat

/*
sitemap.go - Sitemap Parsing and Identifier Decoding

Turns raw sitemap XML into catalog entries:
  - ParseSitemapIndex: <sitemapindex><sitemap><loc> child URLs
  - ParseSitemap: <urlset><url><loc>/<lastmod> pairs
  - DecodeIdentifier: strip the page prefix, HTML-unescape, percent-decode
  - Dedupe: collapse repeated identifiers keeping the last occurrence

Sitemaps are read leniently: HTML named entities (&eacute;, &nbsp;) are
decoded and a bare "&" is kept as text, so one sloppy <loc> never costs the
rest of the document. Only structural damage such as truncation is an error.
Decoding falls back to the entity-decoded value when percent-decoding fails,
so a malformed escape never drops an entry.
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/tomtom215/wikithat/internal/models"
)

// RawEntry is one <url> element from a child sitemap.
type RawEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type sitemapIndexDoc struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

type urlSetDoc struct {
	URLs []RawEntry `xml:"url"`
}

// newSitemapDecoder returns a non-strict decoder that knows the HTML entity
// set. Entity decoding happens here, once.
func newSitemapDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.AutoClose = xml.HTMLAutoClose
	return dec
}

// ParseSitemapIndex returns the child sitemap URLs listed in a sitemap index,
// in document order. Empty locations are dropped.
func ParseSitemapIndex(data []byte) ([]string, error) {
	var doc sitemapIndexDoc
	if err := newSitemapDecoder(data).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap index: %w", err)
	}

	urls := make([]string, 0, len(doc.Sitemaps))
	for _, s := range doc.Sitemaps {
		if loc := strings.TrimSpace(s.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// ParseSitemap returns the <url> entries of a child sitemap in document order.
// Loc and LastMod are entity-decoded.
func ParseSitemap(data []byte) ([]RawEntry, error) {
	var doc urlSetDoc
	if err := newSitemapDecoder(data).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	for i := range doc.URLs {
		doc.URLs[i].Loc = strings.TrimSpace(doc.URLs[i].Loc)
		doc.URLs[i].LastMod = strings.TrimSpace(doc.URLs[i].LastMod)
	}
	return doc.URLs, nil
}

// DecodeIdentifier derives a catalog identifier from a page location as it
// appears in raw XML text. The prefix is stripped when present, HTML
// entities are unescaped, then percent escapes are decoded. NUL bytes and
// invalid UTF-8 are removed and the result is trimmed. An empty string means
// the entry is unusable.
func DecodeIdentifier(loc, prefix string) string {
	return identifierFromLoc(html.UnescapeString(strings.TrimSpace(loc)), prefix)
}

// identifierFromLoc is DecodeIdentifier for a loc whose entities were
// already decoded by ParseSitemap. Unescaping again would turn a literal
// "&lt;" into "<".
func identifierFromLoc(loc, prefix string) string {
	id := strings.TrimPrefix(strings.TrimSpace(loc), prefix)
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	id = strings.ReplaceAll(id, "\x00", "")
	id = strings.ToValidUTF8(id, "")
	return strings.TrimSpace(id)
}

// TitleFromIdentifier returns the display title for an identifier.
func TitleFromIdentifier(identifier string) string {
	return strings.ReplaceAll(identifier, "_", " ")
}

// Dedupe collapses entries that share an identifier. The surviving entry
// carries the values of the last occurrence but keeps the position of the
// first, so output order is stable.
func Dedupe(entries []models.CatalogEntry) []models.CatalogEntry {
	index := make(map[string]int, len(entries))
	out := make([]models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Identifier]; ok {
			out[i] = e
			continue
		}
		index[e.Identifier] = len(out)
		out = append(out, e)
	}
	return out
}

// ToCatalogEntries decodes parsed sitemap entries into catalog entries. Entries
// whose identifier decodes to empty are dropped and counted in dropped.
// normalize derives the lookup key from the display title.
func ToCatalogEntries(raw []RawEntry, prefix string, normalize func(string) string) (entries []models.CatalogEntry, dropped int) {
	entries = make([]models.CatalogEntry, 0, len(raw))
	for _, r := range raw {
		id := identifierFromLoc(r.Loc, prefix)
		if id == "" {
			dropped++
			continue
		}

		title := TitleFromIdentifier(id)
		e := models.CatalogEntry{
			Identifier:    id,
			DisplayTitle:  &title,
			NormalizedKey: normalize(title),
		}
		if r.LastMod != "" {
			lastMod := r.LastMod
			e.LastModified = &lastMod
		}
		entries = append(entries, e)
	}
	return entries, dropped
}
