package citation

import (
	"github.com/relaydesk/handoff/internal/activity"
)

// FixCitations sanitizes message entities before delivery to the user
// channel. Stream-info entities are dropped outright. Citation-bearing
// entities are rebuilt citation by citation through a normalized record so
// that display text is never null and unrecognized icon values collapse to
// the documented default. Other annotation entities pass through unchanged.
func FixCitations(entities []activity.Entity) []activity.Entity {
	fixed := make([]activity.Entity, 0, len(entities))
	for _, entity := range entities {
		switch entity.Kind() {
		case activity.EntityKindStreamInfo:
			continue
		case activity.EntityKindCitation:
			fixed = append(fixed, rebuildCitationEntity(entity))
		case activity.EntityKindOther:
			fixed = append(fixed, entity)
		}
	}
	return fixed
}

func rebuildCitationEntity(entity activity.Entity) activity.Entity {
	rebuilt := activity.Entity{Type: entity.Type}
	for _, c := range entity.Citations {
		record, ok := NormalizeCitation(c)
		if !ok {
			continue
		}
		rebuilt.Citations = append(rebuilt.Citations, citationFromRecord(record))
	}
	return rebuilt
}

// NormalizeCitation derives the normalized record for one citation. A
// citation with no appearance carries nothing renderable and is skipped.
func NormalizeCitation(c activity.Citation) (activity.CitationRecord, bool) {
	if c.Appearance == nil {
		return activity.CitationRecord{}, false
	}
	iconRaw := ""
	if c.Appearance.Image != nil {
		iconRaw = c.Appearance.Image.Name
	}
	return activity.CitationRecord{
		Position:    c.Position,
		Title:       c.Appearance.Name,
		Abstract:    c.Appearance.Abstract,
		DisplayText: c.Appearance.Text,
		URL:         c.Appearance.URL,
		Icon:        activity.IconNameOrDefault(iconRaw),
	}, true
}

func citationFromRecord(r activity.CitationRecord) activity.Citation {
	return activity.Citation{
		Position: r.Position,
		Appearance: &activity.Appearance{
			Name:     r.Title,
			Abstract: r.Abstract,
			Text:     r.DisplayText,
			URL:      r.URL,
			Image:    &activity.AppearanceImage{Name: string(r.Icon)},
		},
	}
}
