package models

import (
	"strings"

	"github.com/samber/lo"
)

// MemberDelimiter separates uids inside encoded member lists and group
// channel ids.
const MemberDelimiter = "|"

// ChannelKeyRecord lives in one participant's shard and points at a channel.
// For direct channels Members holds the single counterparty uid; for group
// channels it holds the full delimited member set.
type ChannelKeyRecord struct {
	ChannelID string `db:"channel_id" json:"dmid"`
	IsGroup   bool   `db:"is_group" json:"isGroupDM"`
	Members   string `db:"members" json:"uid"`
	Open      bool   `db:"open" json:"open"`
	Unread    bool   `db:"unread" json:"unread"`
}

// SplitMembers decodes a delimited uid list, dropping empties and duplicates
// while preserving order.
func SplitMembers(encoded string) []string {
	parts := strings.Split(encoded, MemberDelimiter)
	parts = lo.Filter(parts, func(p string, _ int) bool { return p != "" })
	return lo.Uniq(parts)
}

// Participants resolves the full participant set of the channel as seen from
// the shard owner's record.
func (r ChannelKeyRecord) Participants(owner string) []string {
	if r.IsGroup {
		return SplitMembers(r.Members)
	}
	return []string{r.Members, owner}
}
