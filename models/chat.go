package models

import "time"

// Chat senders.
const (
	SenderUser  = "user"
	SenderAgent = "agent"
)

// ChatTurn is one message in a session's append-only chat log.
type ChatTurn struct {
	ID        string    `bson:"id" json:"id"`
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Message   string    `bson:"message" json:"message"`
	Sender    string    `bson:"sender" json:"sender"`
	Topic     string    `bson:"topic,omitempty" json:"topic,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Summary is the rolling conversation summary for a session, one per session.
type Summary struct {
	SessionID         string    `bson:"sessionId" json:"sessionId"`
	SummaryText       string    `bson:"summaryText" json:"summaryText"`
	AppointmentActive bool      `bson:"appointmentActive" json:"appointmentActive"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SessionFlag is the persisted per-session appointment-mode bit. It is the
// authoritative routing signal: a missing row is equivalent to false.
type SessionFlag struct {
	SessionID        string `bson:"sessionId" json:"sessionId"`
	WantsAppointment bool   `bson:"wantsAppointment" json:"wantsAppointment"`
}
