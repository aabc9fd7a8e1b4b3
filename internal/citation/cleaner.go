// Package citation sanitizes citation markup on AI-session responses: it
// trims redundant source lists from the message tail and normalizes citation
// entities into the fixed shape downstream renderers accept.
package citation

import (
	"regexp"
	"strings"

	"github.com/relaydesk/handoff/internal/activity"
)

var citationHeaders = []string{"sources:", "references:", "citations:"}

// Matches reference-list lines: "[1]: http...", "1. http...", "2) http...",
// "- http...".
var citationLinePattern = regexp.MustCompile(`(?i)^\s*(\[\d+\]:|\d+[.)]|-\s*)\s*https?://`)

// RemoveTrailingCitations strips a trailing sources/references block from the
// text when the block's URLs are backed by citation entities. It only trims
// the tail, never the body, and is idempotent. Text with no citation entities
// is returned unchanged: a plain-text URL with no citation backing it is not
// ours to guess at.
func RemoveTrailingCitations(text string, entities []activity.Entity) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	urls := collectCitationURLs(entities)
	if len(urls) == 0 {
		return text
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines = trimTrailingBlanks(lines)
	original := len(lines)

	for len(lines) > 0 && isCitationLine(strings.TrimSpace(lines[len(lines)-1]), urls) {
		lines = lines[:len(lines)-1]
	}
	lines = trimTrailingBlanks(lines)

	if len(lines) == original {
		return text
	}
	return strings.Join(lines, "\n")
}

func collectCitationURLs(entities []activity.Entity) map[string]struct{} {
	urls := make(map[string]struct{})
	for _, entity := range entities {
		if entity.Kind() != activity.EntityKindCitation {
			continue
		}
		for _, c := range entity.Citations {
			if c.Appearance == nil {
				continue
			}
			url := strings.TrimSpace(c.Appearance.URL)
			if url == "" {
				continue
			}
			urls[strings.ToLower(url)] = struct{}{}
		}
	}
	return urls
}

func isCitationLine(line string, urls map[string]struct{}) bool {
	if line == "" {
		return true
	}
	for _, header := range citationHeaders {
		if strings.EqualFold(line, header) {
			return true
		}
	}
	lowered := strings.ToLower(line)
	for url := range urls {
		if strings.Contains(lowered, url) {
			return true
		}
	}
	return citationLinePattern.MatchString(line)
}

func trimTrailingBlanks(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
