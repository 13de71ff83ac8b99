package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"frontline/config"
	"frontline/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// reminderLead is how long before the appointment the reminder fires.
const reminderLead = time.Hour

// NewReminderTask builds the asynq task for an appointment reminder.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues reminder tasks on the shared Redis queue.
type AsynqReminderScheduler struct {
	client *asynq.Client
}

// NewAsynqReminderScheduler builds a scheduler backed by the configured
// reminder queue.
func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	return &AsynqReminderScheduler{client: client}
}

// ScheduleReminder enqueues a reminder firing one hour before the
// appointment. Appointments closer than that fire immediately.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, appointment *models.Appointment) error {
	fireAt := appointment.Time.Add(-reminderLead)
	if fireAt.Before(time.Now()) {
		fireAt = time.Now()
	}

	payload := models.ReminderPayload{
		AppointmentID: appointment.ID,
		SessionID:     appointment.SessionID,
		Department:    appointment.Department,
		FireDate:      appointment.Time.Format(time.RFC3339),
		Title:         "Appointment reminder",
		Body: fmt.Sprintf("%s %s has an appointment at %s on %s",
			appointment.FirstName, appointment.LastName,
			appointment.Department, appointment.Time.Format("2006-01-02 15:04")),
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("build reminder task: %w", err)
	}

	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue reminder task: %w", err)
	}
	return nil
}

// Close releases the underlying asynq client.
func (s *AsynqReminderScheduler) Close() error {
	return s.client.Close()
}
