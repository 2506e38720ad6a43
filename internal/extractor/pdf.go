// Package extractor turns statement PDFs into the decoded per-page text
// the extraction engine consumes. It is the upstream producer only: all
// interpretation of the text happens in internal/engine.
package extractor

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// minQuality is the readable-character ratio below which extracted text is
// treated as garbage (identity-encoded fonts, scanned pages).
const minQuality = 0.85

// ExtractText reads a PDF file and returns the text of each page, line
// order preserved. Text that fails the readability check is rejected
// rather than handed to the engine, so pattern matching never runs over
// undecodable glyph soup.
func ExtractText(filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %q: %w", filePath, err)
	}
	defer f.Close()

	pages, err := extractPages(r)
	if err != nil {
		return nil, fmt.Errorf("pdf text extraction failed for %q: %w", filePath, err)
	}
	if q := textQuality(pages); q < minQuality {
		return nil, fmt.Errorf("pdf %q yielded unreadable text (quality %.2f); the file may be scanned or use custom font encodings", filePath, q)
	}
	return pages, nil
}

func extractPages(r *pdf.Reader) ([]string, error) {
	var pages []string
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page))
	}
	return pages, nil
}

// pageText reassembles a page's positioned text fragments into lines.
// Fragments are grouped by Y coordinate (top to bottom) and ordered by X
// within a line, mirroring how the statement reads visually.
func pageText(page pdf.Page) string {
	texts := page.Content().Text
	if len(texts) == 0 {
		return ""
	}

	sort.SliceStable(texts, func(i, j int) bool {
		if texts[i].Y != texts[j].Y {
			return texts[i].Y > texts[j].Y // PDF Y grows upward
		}
		return texts[i].X < texts[j].X
	})

	var buf bytes.Buffer
	lastY := texts[0].Y
	lastEnd := 0.0
	for _, t := range texts {
		if t.Y != lastY {
			buf.WriteByte('\n')
			lastY = t.Y
			lastEnd = 0
		} else if lastEnd > 0 && t.X-lastEnd > t.FontSize/2 {
			buf.WriteByte(' ')
		}
		buf.WriteString(t.S)
		lastEnd = t.X + t.W
	}
	return buf.String()
}

// textQuality returns the ratio of plain readable characters to total.
// Strict ASCII plus common statement punctuation: unicode.IsLetter is too
// permissive and passes garbage from identity-encoded fonts.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				readable++
			case unicode.IsSpace(r):
				readable++
			case strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
