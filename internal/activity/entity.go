package activity

import "strings"

// EntityKind is the discriminator for the entity variant. Inbound entities are
// either citation annotations or opaque pass-through annotations; stream-info
// markers are a transport artifact that never leaves the bridge.
type EntityKind string

const (
	EntityKindCitation   EntityKind = "citation"
	EntityKindStreamInfo EntityKind = "streaminfo"
	EntityKindOther      EntityKind = "other"
)

const streamInfoType = "streaminfo"

// Entity is structured metadata attached to a message. Citations is non-empty
// only for citation-bearing annotation entities; Properties carries the raw
// payload of anything else untouched.
type Entity struct {
	Type       string         `json:"type,omitempty"`
	Citations  []Citation     `json:"citation,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Kind classifies the entity for exhaustive matching.
func (e Entity) Kind() EntityKind {
	if strings.EqualFold(strings.TrimSpace(e.Type), streamInfoType) {
		return EntityKindStreamInfo
	}
	if len(e.Citations) > 0 {
		return EntityKindCitation
	}
	return EntityKindOther
}

// Citation links a claim in the message text to a source document.
type Citation struct {
	Position   int         `json:"position,omitempty"`
	Appearance *Appearance `json:"appearance,omitempty"`
}

// Appearance describes how a citation's source should be presented.
type Appearance struct {
	Name     string           `json:"name,omitempty"`
	Abstract string           `json:"abstract,omitempty"`
	Text     string           `json:"text,omitempty"`
	URL      string           `json:"url,omitempty"`
	Image    *AppearanceImage `json:"image,omitempty"`
}

// AppearanceImage names the icon a renderer should show for the source.
type AppearanceImage struct {
	Name string `json:"name,omitempty"`
}

// CitationRecord is the normalized citation produced for outbound messages.
// DisplayText defaults to the empty string, never null.
type CitationRecord struct {
	Position    int      `json:"position,omitempty"`
	Title       string   `json:"title,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`
	DisplayText string   `json:"displayText"`
	URL         string   `json:"url,omitempty"`
	Icon        IconName `json:"icon"`
}

// IconName enumerates the icon set downstream renderers understand.
type IconName string

const (
	IconWord       IconName = "Microsoft Word"
	IconExcel      IconName = "Microsoft Excel"
	IconPowerPoint IconName = "Microsoft PowerPoint"
	IconOneNote    IconName = "Microsoft OneNote"
	IconSharePoint IconName = "Microsoft SharePoint"
	IconVisio      IconName = "Microsoft Visio"
	IconSourceCode IconName = "Source Code"
	IconImage      IconName = "Image"
	IconGIF        IconName = "GIF"
	IconVideo      IconName = "Video"
	IconSound      IconName = "Sound"
	IconZIP        IconName = "ZIP"
	IconText       IconName = "Text"
	IconPDF        IconName = "PDF"
)

// DefaultIcon is used when a source icon value is absent or unrecognized.
// Renderers enumerate a fixed icon set, so a raw value must never propagate.
const DefaultIcon = IconImage

var knownIcons = map[IconName]struct{}{
	IconWord: {}, IconExcel: {}, IconPowerPoint: {}, IconOneNote: {},
	IconSharePoint: {}, IconVisio: {}, IconSourceCode: {}, IconImage: {},
	IconGIF: {}, IconVideo: {}, IconSound: {}, IconZIP: {}, IconText: {}, IconPDF: {},
}

// IconNameOrDefault resolves a raw icon value to a recognized enumerant,
// falling back to DefaultIcon.
func IconNameOrDefault(raw string) IconName {
	name := IconName(strings.TrimSpace(raw))
	if _, ok := knownIcons[name]; ok {
		return name
	}
	return DefaultIcon
}
