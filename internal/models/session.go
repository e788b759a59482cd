package models

// Session maps a live session token to the owning participant. Rows live in
// the participant's shard and exist only while a connection is open.
type Session struct {
	SID string `db:"sid" json:"sid"`
	UID string `db:"shard_uid" json:"uid"`
}
