package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaydesk/handoff/internal/activity"
)

func TestFixCitationsDropsStreamInfo(t *testing.T) {
	t.Parallel()

	entities := []activity.Entity{
		{Type: "streaminfo"},
		{Type: "StreamInfo"},
		citationEntity("https://example.com/a"),
	}

	fixed := FixCitations(entities)
	assert.Len(t, fixed, 1)
	assert.Equal(t, activity.EntityKindCitation, fixed[0].Kind())
}

func TestFixCitationsPassesOtherThrough(t *testing.T) {
	t.Parallel()

	other := activity.Entity{Type: "clientInfo", Properties: map[string]any{"locale": "en-US"}}
	fixed := FixCitations([]activity.Entity{other})

	assert.Len(t, fixed, 1)
	assert.Equal(t, other, fixed[0])
}

func TestFixCitationsSkipsCitationWithoutAppearance(t *testing.T) {
	t.Parallel()

	entity := activity.Entity{
		Type: "https://schema.org/Message",
		Citations: []activity.Citation{
			{Position: 1},
			{Position: 2, Appearance: &activity.Appearance{Name: "kept", URL: "https://example.com/kept"}},
		},
	}

	fixed := FixCitations([]activity.Entity{entity})
	assert.Len(t, fixed, 1)
	assert.Len(t, fixed[0].Citations, 1)
	assert.Equal(t, 2, fixed[0].Citations[0].Position)
}

func TestNormalizeCitationDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		citation activity.Citation
		wantOK   bool
		wantIcon activity.IconName
		wantText string
	}{
		{
			name:     "nil appearance skipped",
			citation: activity.Citation{Position: 1},
			wantOK:   false,
		},
		{
			name: "unknown icon falls back",
			citation: activity.Citation{Position: 1, Appearance: &activity.Appearance{
				Image: &activity.AppearanceImage{Name: "Clippy"},
			}},
			wantOK:   true,
			wantIcon: activity.DefaultIcon,
		},
		{
			name: "missing image falls back",
			citation: activity.Citation{Position: 1, Appearance: &activity.Appearance{
				Name: "report",
			}},
			wantOK:   true,
			wantIcon: activity.DefaultIcon,
		},
		{
			name: "known icon kept",
			citation: activity.Citation{Position: 1, Appearance: &activity.Appearance{
				Image: &activity.AppearanceImage{Name: "PDF"},
			}},
			wantOK:   true,
			wantIcon: activity.IconPDF,
		},
		{
			name: "display text from appearance",
			citation: activity.Citation{Position: 1, Appearance: &activity.Appearance{
				Text: "see page 3",
			}},
			wantOK:   true,
			wantIcon: activity.DefaultIcon,
			wantText: "see page 3",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			record, ok := NormalizeCitation(tt.citation)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			assert.Equal(t, tt.wantIcon, record.Icon)
			assert.Equal(t, tt.wantText, record.DisplayText)
		})
	}
}

func TestFixCitationsRebuildsRecordFields(t *testing.T) {
	t.Parallel()

	entity := activity.Entity{
		Type: "https://schema.org/Message",
		Citations: []activity.Citation{{
			Position: 3,
			Appearance: &activity.Appearance{
				Name:     "Widget Guide",
				Abstract: "How widgets reset.",
				Text:     "widgets reset",
				URL:      "https://example.com/widgets",
				Image:    &activity.AppearanceImage{Name: "Microsoft Word"},
			},
		}},
	}

	fixed := FixCitations([]activity.Entity{entity})
	assert.Len(t, fixed, 1)
	assert.Len(t, fixed[0].Citations, 1)

	c := fixed[0].Citations[0]
	assert.Equal(t, 3, c.Position)
	assert.Equal(t, "Widget Guide", c.Appearance.Name)
	assert.Equal(t, "How widgets reset.", c.Appearance.Abstract)
	assert.Equal(t, "widgets reset", c.Appearance.Text)
	assert.Equal(t, "https://example.com/widgets", c.Appearance.URL)
	assert.Equal(t, string(activity.IconWord), c.Appearance.Image.Name)
}
