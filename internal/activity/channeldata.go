package activity

import "encoding/json"

// streamFields are transport artifacts of the AI-session protocol and must
// not leak onto messages delivered to the user channel.
var streamFields = []string{"streamType", "streamId"}

// ChannelData carries channel-specific metadata as an opaque key set. The
// known stream fields are addressable for exclusion; everything else passes
// through unchanged.
type ChannelData struct {
	fields map[string]json.RawMessage
}

// NewChannelData builds channel data from a key set.
func NewChannelData(fields map[string]json.RawMessage) *ChannelData {
	if len(fields) == 0 {
		return nil
	}
	copied := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &ChannelData{fields: copied}
}

// WithoutStreamFields returns a copy with the stream transport fields
// removed, or nil if nothing remains.
func (d *ChannelData) WithoutStreamFields() *ChannelData {
	if d == nil {
		return nil
	}
	copied := make(map[string]json.RawMessage, len(d.fields))
	for k, v := range d.fields {
		copied[k] = v
	}
	for _, field := range streamFields {
		delete(copied, field)
	}
	if len(copied) == 0 {
		return nil
	}
	return &ChannelData{fields: copied}
}

// Get returns the raw value for a key and whether it is present.
func (d *ChannelData) Get(key string) (json.RawMessage, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.fields[key]
	return v, ok
}

// Len returns the number of keys.
func (d *ChannelData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

func (d *ChannelData) MarshalJSON() ([]byte, error) {
	if d == nil || len(d.fields) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(d.fields)
}

func (d *ChannelData) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	d.fields = fields
	return nil
}
