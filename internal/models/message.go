package models

import "encoding/json"

// Namespaces for the shared message collections.
const (
	NamespaceDirect = "dms"
	NamespaceGroup  = "gdms"
)

// ConfigsID is reserved inside every channel collection for channel-level
// configuration and must never appear in message listings.
const ConfigsID = "configs"

// BlockedUID marks a disabled account. User-originated traffic must never be
// persisted or delivered to a channel that includes it.
const BlockedUID = "0"

// Author identifies the sender of a message.
type Author struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
}

// Message is a single entry in a channel's shared collection. ChannelID is
// implied by the collection key and therefore stripped from the stored body;
// it is restored on outbound events.
type Message struct {
	ID        string          `json:"id"`
	ChannelID string          `json:"channelID,omitempty"`
	Author    Author          `json:"author"`
	Timestamp string          `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
	Deleted   bool            `json:"deleted,omitempty"`
}
