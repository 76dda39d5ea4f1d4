package domain

import "time"

type InboxMessageStatus string

const (
	InboxStatusProcessed InboxMessageStatus = "PROCESSED"
	InboxStatusRejected  InboxMessageStatus = "REJECTED"
)

// InboxMessage records an incoming command so a redelivered message is
// executed at most once.
type InboxMessage struct {
	ID          string
	Topic       string
	Payload     []byte
	Status      InboxMessageStatus
	ReceivedAt  time.Time
	ProcessedAt *time.Time
}
