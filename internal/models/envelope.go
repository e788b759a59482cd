package models

// Envelope type and code identifying message events among the other event
// families of the wire protocol.
const (
	EnvelopeTypeEvent = 0
	CodeMessageEvent  = 5
)

// Operation codes within the message event family.
const (
	OpCreate = 0
	OpDelete = 1
	OpEdit   = 2
	OpUpload = 3
)

// Envelope is the outbound event frame delivered to live sessions.
type Envelope struct {
	Type int `json:"type"`
	Code int `json:"code"`
	Op   int `json:"op"`
	Data any `json:"data"`
}

// MessageEvent wraps a payload in the message-event envelope.
func MessageEvent(op int, data any) Envelope {
	return Envelope{Type: EnvelopeTypeEvent, Code: CodeMessageEvent, Op: op, Data: data}
}

// DeleteEventData is the payload of a delete event. It intentionally carries
// no content so clients can redact locally.
type DeleteEventData struct {
	ChannelID string `json:"channelID"`
	MsgID     string `json:"msgid"`
}

// EditEventData is the payload of an edit event.
type EditEventData struct {
	ChannelID string `json:"channelID"`
	MsgID     string `json:"msgid"`
	Content   any    `json:"content"`
	Author    Author `json:"author"`
}
