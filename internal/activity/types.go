// Package activity defines the conversation activity model shared by the
// bridge: activities exchanged with the AI session, conversation references
// used for proactive delivery, and citation entities carried on messages.
package activity

import "strings"

// Type identifies the kind of an activity.
type Type string

const (
	TypeMessage Type = "message"
	TypeTyping  Type = "typing"
	TypeEvent   Type = "event"
)

// ChannelAccount identifies a participant on the user channel.
type ChannelAccount struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount identifies the conversation an activity belongs to.
type ConversationAccount struct {
	ID string `json:"id,omitempty"`
}

// Attachment is a piece of binary or card content attached to a message.
type Attachment struct {
	ContentType string `json:"contentType,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Name        string `json:"name,omitempty"`
}

// CardAction is an interactive suggestion presented alongside a message.
type CardAction struct {
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
	Value string `json:"value,omitempty"`
}

// SuggestedActions holds the quick-reply actions for a message.
type SuggestedActions struct {
	Actions []CardAction `json:"actions,omitempty"`
}

// Activity is a single unit of conversation traffic.
type Activity struct {
	Type             Type                `json:"type,omitempty"`
	ID               string              `json:"id,omitempty"`
	ChannelID        string              `json:"channelId,omitempty"`
	ServiceURL       string              `json:"serviceUrl,omitempty"`
	From             ChannelAccount      `json:"from,omitempty"`
	Recipient        ChannelAccount      `json:"recipient,omitempty"`
	Conversation     ConversationAccount `json:"conversation,omitempty"`
	Text             string              `json:"text,omitempty"`
	TextFormat       string              `json:"textFormat,omitempty"`
	InputHint        string              `json:"inputHint,omitempty"`
	Attachments      []Attachment        `json:"attachments,omitempty"`
	SuggestedActions *SuggestedActions   `json:"suggestedActions,omitempty"`
	Entities         []Entity            `json:"entities,omitempty"`
	ChannelData      *ChannelData        `json:"channelData,omitempty"`

	// Event fields, meaningful only when Type is TypeEvent.
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// IsType reports whether the activity is of the given type.
func (a Activity) IsType(t Type) bool {
	return a.Type == t
}

// NewMessage builds a message activity with the given text.
func NewMessage(text string) Activity {
	return Activity{Type: TypeMessage, Text: text}
}

// ConversationReference is an opaque record sufficient to resume sending
// into a specific conversation without an active inbound request.
type ConversationReference struct {
	ActivityID   string              `json:"activityId,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	Conversation ConversationAccount `json:"conversation,omitempty"`
	User         ChannelAccount      `json:"user,omitempty"`
	Agent        ChannelAccount      `json:"agent,omitempty"`
}

// Reference extracts the conversation reference from an inbound activity.
// From is the user and Recipient the agent, matching the inbound direction.
func (a Activity) Reference() ConversationReference {
	return ConversationReference{
		ActivityID:   a.ID,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Conversation: a.Conversation,
		User:         a.From,
		Agent:        a.Recipient,
	}
}

// ContinuationActivity builds the skeleton activity for a proactive send.
// The roles are flipped: the agent becomes the sender.
func (r ConversationReference) ContinuationActivity() Activity {
	return Activity{
		Type:         TypeEvent,
		Name:         "ContinueConversation",
		ChannelID:    r.ChannelID,
		ServiceURL:   r.ServiceURL,
		Conversation: r.Conversation,
		From:         r.Agent,
		Recipient:    r.User,
	}
}

// IsValid reports whether the reference carries enough to address a send.
func (r ConversationReference) IsValid() bool {
	return strings.TrimSpace(r.Conversation.ID) != "" && strings.TrimSpace(r.ServiceURL) != ""
}
