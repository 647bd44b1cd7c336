package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"realty-rag/internal/models"
)

const (
	// MinChunkChars avoids tiny, noisy fragments.
	MinChunkChars = 380

	// Pages with too many digits/punctuation are likely a table of contents.
	tocMaxDigitRatio = 0.35

	// Cover/index pages are disproportionately likely at the start, so the
	// first two pages use a lower ratio.
	coverDigitRatio = 0.20

	// Lines repeating across this fraction of pages are headers/footers.
	headerFooterFraction = 0.4
)

var (
	titleRe      = regexp.MustCompile(`(?m)^(?:\d+(?:\.\d+)*\s+)?([A-ZÁÉÍÓÚÑ][^\n]{3,80})$`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	digitsRe     = regexp.MustCompile(`\d+`)
	nonWordRunRe = regexp.MustCompile(`[\W_]+`)
)

// NormalizeSpaces collapses runs of spaces/tabs and caps blank-line runs.
func NormalizeSpaces(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// digitRatio weights digits and list/TOC punctuation against page length.
func digitRatio(s string) float64 {
	if s == "" {
		return 1.0
	}
	var digits, punct, total int
	for _, r := range s {
		total++
		switch {
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(".·•…—-–", r):
			punct++
		}
	}
	return float64(digits+punct) / float64(total)
}

// LooksLikeTOCOrCover flags pages that are probably a table of contents or
// a cover: high weighted digit/punctuation ratio, known TOC keywords, or a
// lower ratio threshold on the first two pages.
func LooksLikeTOCOrCover(text string, pageIdx int) bool {
	if pageIdx <= 1 && digitRatio(text) > coverDigitRatio {
		return true
	}
	if digitRatio(text) > tocMaxDigitRatio {
		return true
	}
	lowered := strings.ToLower(text)
	return strings.Contains(lowered, "índice") ||
		strings.Contains(lowered, "contenido") ||
		strings.Contains(lowered, "contents")
}

// RemoveHeadersFooters strips lines that repeat across pages. Candidates are
// each page's first-two and last-two trimmed lines; any candidate appearing
// in more than headerFooterFraction of the pages is dropped everywhere.
func RemoveHeadersFooters(pages []string) []string {
	counts := make(map[string]int)
	perPageLines := make([][]string, len(pages))
	for i, p := range pages {
		var lines []string
		for _, l := range strings.Split(p, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				lines = append(lines, l)
			}
		}
		perPageLines[i] = lines
		if len(lines) == 0 {
			continue
		}
		// Head and tail overlap on short pages; count each candidate line
		// once per page so a single page can never reach the threshold.
		candidates := make(map[string]bool)
		for _, l := range lines[:min(2, len(lines))] {
			candidates[l] = true
		}
		for _, l := range lines[max(0, len(lines)-2):] {
			candidates[l] = true
		}
		for l := range candidates {
			counts[l]++
		}
	}

	// A line must repeat at least twice to count as a header, no matter how
	// few pages there are.
	threshold := max(2, int(headerFooterFraction*float64(len(pages))))
	repetitive := make(map[string]bool)
	for line, c := range counts {
		if c >= threshold {
			repetitive[line] = true
		}
	}

	cleaned := make([]string, len(pages))
	for i, lines := range perPageLines {
		var kept []string
		for _, l := range lines {
			if !repetitive[l] {
				kept = append(kept, l)
			}
		}
		cleaned[i] = strings.Join(kept, "\n")
	}
	return cleaned
}

// ExtractTitle captures a section heading to anchor the chunk semantically:
// an optional numeric prefix followed by a capitalized line of bounded
// length, falling back to the first non-trivial line truncated to 80 chars.
func ExtractTitle(text string) string {
	if m := titleRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) >= 5 {
			return truncateRunes(line, 80)
		}
	}
	return ""
}

// ChunkTitleAware emits fixed-size overlapping windows of a page's text,
// each prefixed with the detected heading. Windows shorter than
// MinChunkChars are dropped.
func ChunkTitleAware(text, source, sourceType string, pageStart, maxChars, overlap int) []models.Chunk {
	var chunks []models.Chunk
	title := ExtractTitle(text)
	runes := []rune(text)
	n := len(runes)

	i := 0
	for i < n {
		end := min(i+maxChars, n)
		body := strings.TrimSpace(string(runes[i:end]))
		chunkText := body
		if title != "" {
			chunkText = strings.TrimSpace(title + "\n\n" + body)
		}
		if len([]rune(chunkText)) >= MinChunkChars {
			chunks = append(chunks, models.Chunk{
				Text: chunkText,
				Meta: models.ChunkMeta{
					Source:     source,
					SourceType: sourceType,
					PageStart:  pageStart,
					PageEnd:    pageStart,
					Title:      title,
				},
			})
		}
		if end-overlap > i {
			i = end - overlap
		} else {
			i = end
		}
	}
	return chunks
}

// Deduplicate drops chunks whose normalized form (lowercase, digits
// stripped, non-word runs collapsed) was already seen, preserving first
// occurrence order.
func Deduplicate(chunks []models.Chunk) []models.Chunk {
	seen := make(map[string]bool)
	var dedup []models.Chunk
	for _, ch := range chunks {
		key := NormalizeForDedup(ch.Text)
		if !seen[key] {
			seen[key] = true
			dedup = append(dedup, ch)
		}
	}
	return dedup
}

// NormalizeForDedup builds the near-duplicate key for a chunk text.
func NormalizeForDedup(text string) string {
	text = strings.ToLower(text)
	text = digitsRe.ReplaceAllString(text, "")
	text = nonWordRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanAndChunk runs the full preprocessing pipeline over raw page texts:
// whitespace normalization, header/footer removal, TOC/cover filtering,
// title-aware chunking per page and deduplication.
func CleanAndChunk(rawPages []string, source, sourceType string, maxChars, overlap int) []models.Chunk {
	normalized := make([]string, len(rawPages))
	for i, p := range rawPages {
		normalized[i] = NormalizeSpaces(p)
	}
	cleaned := RemoveHeadersFooters(normalized)

	var chunks []models.Chunk
	for i, page := range cleaned {
		if LooksLikeTOCOrCover(page, i) {
			continue
		}
		chunks = append(chunks, ChunkTitleAware(page, source, sourceType, i, maxChars, overlap)...)
	}
	return Deduplicate(chunks)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
