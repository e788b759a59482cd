package ws

import "time"

type ConnInfo struct {
	ConnID      string
	UID         string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
