package models

import "time"

// Appointment is a completed booking. Exactly one row is created per
// finished booking dialogue, inside the same transaction that resets the
// session's appointment flag.
type Appointment struct {
	ID         string    `bson:"id" json:"id"`
	SessionID  string    `bson:"sessionId" json:"sessionId"`
	Department string    `bson:"department" json:"department"`
	Time       time.Time `bson:"time" json:"time"`
	FirstName  string    `bson:"firstName" json:"firstName"`
	LastName   string    `bson:"lastName" json:"lastName"`
	Email      string    `bson:"email" json:"email"`
	Phone      string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	SessionID     string `json:"sessionId"`
	Department    string `json:"department"`
	FireDate      string `json:"fireDate"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}
