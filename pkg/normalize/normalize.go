// Package normalize implements the source-text normalization pipeline run
// before content hashing and candidate evidence matching: line-ending
// unification, trailing-whitespace trimming, soft-wrap unwrapping with
// heading/list boundary detection, hyphenation joining, blank-line
// soft-merging, and a small set of frozen OCR-repair substitutions.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var listItemRe = regexp.MustCompile(`^\(?\d+\)?\.?\s+`)

// ocrRepairs are frozen literal substitutions applied once, after the rest
// of normalization, to correct a small set of known OCR artifacts. The set
// is closed; new repairs are never added at runtime.
var ocrRepairs = []struct{ from, to string }{
	{"pi'essure", "pressure"},
	{"piâ€™essure", "pressure"},
}

// Text normalizes raw UTF-8 source text into the canonical form stored at
// content/source.txt and hashed for provenance.
func Text(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = rstrip(l)
	}
	lines = trimEmptyEdges(lines)

	merged := unwrap(lines)

	out := strings.Join(merged, "\n")
	if out != "" {
		out += "\n"
	}

	for _, rep := range ocrRepairs {
		out = strings.ReplaceAll(out, rep.from, rep.to)
	}
	return out
}

func rstrip(s string) string {
	return strings.TrimRight(s, " \t\f\v")
}

func trimEmptyEdges(lines []string) []string {
	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}

// isBufHeading reports whether buf looks like a heading: either it ends in
// a colon, or it has no lowercase cased letters and at least one uppercase
// one (mirroring Python's str.isupper(), which requires at least one cased
// character).
func isBufHeading(buf string) bool {
	if strings.HasSuffix(buf, ":") {
		return true
	}
	hasUpper := false
	for _, r := range buf {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// isListItem reports whether nxt begins a list item: a dash/asterisk
// bullet after trimming surrounding whitespace, or a numbered-list prefix
// matched against the untrimmed line (leading indentation defeats the
// numbered-list form, matching the original).
func isListItem(nxt string) bool {
	stripped := strings.TrimSpace(nxt)
	if strings.HasPrefix(stripped, "-") || strings.HasPrefix(stripped, "*") {
		return true
	}
	return listItemRe.MatchString(nxt)
}

func lstrip(s string) string {
	return strings.TrimLeft(s, " \t")
}

// unwrap is a single interleaved pass over lines that unwraps soft-wrapped
// paragraphs, joins hyphenated line breaks, and soft-merges a paragraph
// split by one blank line when the break looks like mid-sentence wrapping
// rather than an intentional paragraph boundary. It stops merging a
// paragraph only at a heading-looking accumulated buffer, a colon-ending
// buffer, or a following list item.
func unwrap(lines []string) []string {
	var out []string
	i := 0
	for i < len(lines) {
		line := lines[i]

		if line == "" {
			j := i + 1
			for j < len(lines) && lines[j] == "" {
				j++
			}

			if len(out) > 0 && j < len(lines) {
				prev := out[len(out)-1]
				nxt := lstrip(lines[j])
				if prev != "" && !strings.ContainsRune(".:;!?)", rune(prev[len(prev)-1])) &&
					nxt != "" && isLowerOrDigit(rune(nxt[0])) {
					out[len(out)-1] = prev + " " + nxt
					i = j + 1
					continue
				}
			}

			if len(out) == 0 || out[len(out)-1] != "" {
				out = append(out, "")
			}
			i++
			continue
		}

		buf := line
		i++
		for i < len(lines) {
			nxt := lines[i]
			if nxt == "" {
				break
			}
			if strings.HasSuffix(buf, "-") {
				buf = buf[:len(buf)-1] + lstrip(nxt)
				i++
				continue
			}
			if isBufHeading(buf) || isListItem(nxt) {
				break
			}
			buf = buf + " " + lstrip(nxt)
			i++
		}
		out = append(out, buf)
	}

	var cleaned []string
	for _, ln := range out {
		if ln == "" && len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
			continue
		}
		cleaned = append(cleaned, ln)
	}
	return cleaned
}

func isLowerOrDigit(r rune) bool {
	return unicode.IsLower(r) || unicode.IsDigit(r)
}
