// Package extract parses free-form contact messages into structured records.
//
// Users are asked for name, phone, email, and Instagram handle in one message
// with no required format, so extraction is a tolerant, order-dependent cascade
// of matchers over the immutable input: email, then phone, then social handle,
// then a best-effort name guess from whatever text remains unclaimed.
package extract

import (
	"regexp"
	"strings"

	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// ---------- package-level compiled regexes ----------

var (
	emailRE = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	// Turkish mobile numbers: optional +90 country prefix, optional leading zero,
	// 5xx operator code, then 3-2-2 digit groups with optional spaces or hyphens.
	phoneRE  = regexp.MustCompile(`(\+?90\s*)?0?\s*(5\d{2})[\s-]*\d{3}[\s-]*\d{2}[\s-]*\d{2}`)
	handleRE = regexp.MustCompile(`@[A-Za-z0-9_.]{3,30}`)
	// Used for the name guess: everything that is not a letter (diacritic-aware)
	// or whitespace is noise once the structured fields are stripped.
	nonLetterRE  = regexp.MustCompile(`[^\p{L}\s]+`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// maxNameTokens caps the name guess at four whitespace-separated words.
const maxNameTokens = 4

// span marks a half-open [start, end) byte range claimed by an earlier matcher.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// firstUnclaimed returns the first match of re in text that does not overlap
// any already-claimed span, or ok=false if there is none.
func firstUnclaimed(re *regexp.Regexp, text string, claimed []span) (span, bool) {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		candidate := span{start: loc[0], end: loc[1]}
		taken := false
		for _, c := range claimed {
			if candidate.overlaps(c) {
				taken = true
				break
			}
		}
		if !taken {
			return candidate, true
		}
	}
	return span{}, false
}

// Extract parses free text into a ContactRecord and reports sufficiency.
//
// Only the first match per field is taken; later email-like or phone-like
// substrings are ignored, not merged. The record is sufficient when a phone
// number or email address was found; a name or handle alone is not enough.
// Extract never fails: malformed input simply yields an insufficient record.
func Extract(text string) (models.ContactRecord, bool) {
	raw := strings.TrimSpace(text)
	record := models.ContactRecord{RawText: raw}
	if raw == "" {
		return record, false
	}

	var claimed []span

	if loc, ok := firstUnclaimed(emailRE, raw, claimed); ok {
		record.Email = raw[loc.start:loc.end]
		claimed = append(claimed, loc)
	}

	if loc, ok := firstUnclaimed(phoneRE, raw, claimed); ok {
		record.Phone = normalizePhone(raw[loc.start:loc.end])
		claimed = append(claimed, loc)
	}

	if loc, ok := firstUnclaimed(handleRE, raw, claimed); ok {
		record.SocialHandle = raw[loc.start:loc.end]
		claimed = append(claimed, loc)
	}

	record.Name = guessName(raw, claimed)

	return record, record.Sufficient()
}

// normalizePhone collapses whitespace runs inside the captured span to single
// spaces. Grouping and hyphens are kept as the user wrote them.
func normalizePhone(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// guessName strips the claimed spans and all non-letter characters from the
// text, then takes the first few remaining tokens as a best-effort name.
// An empty result means no guess.
func guessName(raw string, claimed []span) string {
	cleaned := []byte(raw)
	for _, c := range claimed {
		for i := c.start; i < c.end; i++ {
			cleaned[i] = ' '
		}
	}

	letters := nonLetterRE.ReplaceAllString(string(cleaned), " ")
	letters = strings.TrimSpace(whitespaceRE.ReplaceAllString(letters, " "))
	if letters == "" {
		return ""
	}

	tokens := strings.Fields(letters)
	if len(tokens) > maxNameTokens {
		tokens = tokens[:maxNameTokens]
	}
	return strings.Join(tokens, " ")
}
