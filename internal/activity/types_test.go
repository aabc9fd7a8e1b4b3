package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceRoundTrip(t *testing.T) {
	t.Parallel()

	act := NewMessage("hello")
	act.ID = "act-1"
	act.ChannelID = "webchat"
	act.ServiceURL = "https://channel.example.com"
	act.Conversation = ConversationAccount{ID: "conv-1"}
	act.From = ChannelAccount{ID: "user-1", Name: "Pat"}
	act.Recipient = ChannelAccount{ID: "agent-1"}

	ref := act.Reference()
	assert.Equal(t, "act-1", ref.ActivityID)
	assert.Equal(t, "user-1", ref.User.ID)
	assert.Equal(t, "agent-1", ref.Agent.ID)
	assert.True(t, ref.IsValid())

	cont := ref.ContinuationActivity()
	assert.Equal(t, TypeEvent, cont.Type)
	assert.Equal(t, "ContinueConversation", cont.Name)
	assert.Equal(t, "conv-1", cont.Conversation.ID)
	// Roles flip on continuation.
	assert.Equal(t, "agent-1", cont.From.ID)
	assert.Equal(t, "user-1", cont.Recipient.ID)
}

func TestReferenceIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  ConversationReference
		want bool
	}{
		{name: "complete", ref: ConversationReference{ServiceURL: "https://c.example.com", Conversation: ConversationAccount{ID: "conv-1"}}, want: true},
		{name: "missing conversation", ref: ConversationReference{ServiceURL: "https://c.example.com"}, want: false},
		{name: "missing service url", ref: ConversationReference{Conversation: ConversationAccount{ID: "conv-1"}}, want: false},
		{name: "blank fields", ref: ConversationReference{ServiceURL: "  ", Conversation: ConversationAccount{ID: "  "}}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ref.IsValid(); got != tt.want {
				t.Fatalf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		entity Entity
		want   EntityKind
	}{
		{name: "stream info", entity: Entity{Type: "streaminfo"}, want: EntityKindStreamInfo},
		{name: "stream info mixed case", entity: Entity{Type: " StreamInfo "}, want: EntityKindStreamInfo},
		{name: "citation", entity: Entity{Type: "https://schema.org/Message", Citations: []Citation{{Position: 1}}}, want: EntityKindCitation},
		{name: "other", entity: Entity{Type: "clientInfo"}, want: EntityKindOther},
		{name: "empty", entity: Entity{}, want: EntityKindOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.entity.Kind(); got != tt.want {
				t.Fatalf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIconNameOrDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, IconPDF, IconNameOrDefault("PDF"))
	assert.Equal(t, IconWord, IconNameOrDefault(" Microsoft Word "))
	assert.Equal(t, DefaultIcon, IconNameOrDefault("Clippy"))
	assert.Equal(t, DefaultIcon, IconNameOrDefault(""))
}

func TestCitationRecordDisplayTextNeverOmitted(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(CitationRecord{Position: 1, Icon: DefaultIcon})
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"displayText":""`)
}
