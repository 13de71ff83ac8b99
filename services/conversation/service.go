package conversation

import (
	"context"
	"fmt"
	"time"

	appointmentRepo "frontline/database/repository/appointment"
	chatRepo "frontline/database/repository/chat"
	facilityRepo "frontline/database/repository/facility"
	sessionRepo "frontline/database/repository/session"
	"frontline/models"
	ai "frontline/services/intelligence"
	"frontline/services/matching"

	"go.uber.org/zap"
)

// Mode is the explicit dialogue state a message is processed under.
type Mode int

const (
	// ModeNormal runs the classify-and-recommend path.
	ModeNormal Mode = iota
	// ModeBooking runs the appointment field-collection path.
	ModeBooking
)

// recentTurns is how many chat turns are rehydrated per message.
const recentTurns = 5

// ReminderScheduler enqueues an appointment reminder after a booking
// completes. Failures are logged, never surfaced: the booking stands.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appointment *models.Appointment) error
}

// Service drives the per-message dialogue decision protocol. Each request
// rehydrates its state from the persisted session flag, the recent chat
// turns and the rolling summary; nothing spans requests in memory.
type Service struct {
	Engine          *ai.Engine
	Matching        matching.MatchingService
	FacilityRepo    facilityRepo.FacilityRepository
	ChatRepo        chatRepo.ChatRepository
	SessionRepo     sessionRepo.SessionRepository
	AppointmentRepo appointmentRepo.AppointmentRepository
	Reminders       ReminderScheduler
	DefaultDeadline time.Duration
	Logger          *zap.Logger
}

// ProcessMessage handles one inbound citizen message end to end and
// returns the agent's reply. No chat or summary writes happen unless every
// required external call succeeded.
func (s *Service) ProcessMessage(ctx context.Context, req models.IntakeRequest) (string, error) {
	deadline := s.DefaultDeadline
	if req.LatencyBudgetMs > 0 {
		deadline = time.Duration(req.LatencyBudgetMs) * time.Millisecond
	}
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	mode, err := s.loadMode(ctx, req.SessionID)
	if err != nil {
		return "", fmt.Errorf("load session flag: %w", err)
	}

	summaryText, err := s.loadSummaryText(ctx, req.SessionID)
	if err != nil {
		return "", fmt.Errorf("load summary: %w", err)
	}

	turns, err := s.ChatRepo.GetRecent(ctx, req.SessionID, recentTurns)
	if err != nil {
		return "", fmt.Errorf("load recent turns: %w", err)
	}

	var (
		reply  string
		topic  string
		booked bool
	)

	switch mode {
	case ModeBooking:
		reply, booked, err = s.processBooking(ctx, req, summaryText, turns)
	default:
		reply, topic, err = s.processNormal(ctx, req, summaryText, turns)
	}
	if err != nil {
		return "", err
	}

	update, err := s.Engine.Summarize(ctx, summaryText,
		fmt.Sprintf("user: %s\nagent: %s", req.Message, reply))
	if err != nil {
		return "", err
	}

	active := update.AppointmentActive
	if booked {
		// The transactional flag reset wins over the summarizer's claim
		// for the message that completed the booking.
		active = false
	}

	if err := s.persistExchange(ctx, req, reply, topic, update.UpdatedSummary, active, booked); err != nil {
		return "", err
	}

	return reply, nil
}

// loadMode rehydrates the dialogue mode from the persisted session flag.
// A missing row is equivalent to an explicit false.
func (s *Service) loadMode(ctx context.Context, sessionID string) (Mode, error) {
	flag, err := s.SessionRepo.GetFlag(ctx, sessionID)
	if err != nil {
		return ModeNormal, err
	}
	if flag != nil && flag.WantsAppointment {
		return ModeBooking, nil
	}
	return ModeNormal, nil
}

func (s *Service) loadSummaryText(ctx context.Context, sessionID string) (string, error) {
	summary, err := s.SessionRepo.GetSummary(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if summary == nil {
		return "", nil
	}
	return summary.SummaryText, nil
}

// processNormal runs the classify-and-recommend path and returns the reply
// plus the classified department as the chat topic.
func (s *Service) processNormal(ctx context.Context, req models.IntakeRequest, summaryText string, turns []models.ChatTurn) (string, string, error) {
	classification, err := s.Engine.Classify(ctx, req.Message)
	if err != nil {
		return "", "", err
	}

	facilities, err := s.Matching.FindNearest(ctx, queryPoint(req), classification.Department, matching.DefaultLimit)
	if err != nil {
		return "", "", err
	}

	reply, err := s.Engine.GenerateReply(ctx, summaryText, turns, facilities, classification.EmergencyLevel, req.Message)
	if err != nil {
		return "", "", err
	}

	return reply, classification.Department, nil
}

// processBooking runs one turn of the field-collection dialogue. It
// returns the agent's reply and whether an appointment was created.
func (s *Service) processBooking(ctx context.Context, req models.IntakeRequest, summaryText string, turns []models.ChatTurn) (string, bool, error) {
	// Candidate departments come from the same classify+match pipeline the
	// normal path uses, so the collector sees facilities near the citizen.
	classification, err := s.Engine.Classify(ctx, req.Message)
	if err != nil {
		return "", false, err
	}

	candidates, err := s.Matching.FindNearest(ctx, queryPoint(req), classification.Department, matching.DefaultLimit)
	if err != nil {
		return "", false, err
	}

	fields, err := s.Engine.CollectFields(ctx, summaryText, turns, candidates, req.Message)
	if err != nil {
		return "", false, err
	}

	if !fields.AllFieldsCollected {
		return fields.Answer, false, nil
	}

	appointment, verr, err := s.createAppointment(ctx, req.SessionID, fields)
	if err != nil {
		return "", false, err
	}
	if verr != nil {
		// The external claim did not survive local validation: no side
		// effect, surface the agent's own question unchanged.
		s.Logger.Warn("Booking fields rejected",
			zap.String("sessionId", req.SessionID),
			zap.String("field", verr.Field),
			zap.String("reason", verr.Reason))
		return fields.Answer, false, nil
	}

	if s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(ctx, appointment); err != nil {
			s.Logger.Warn("Failed to schedule appointment reminder",
				zap.String("appointmentId", appointment.ID), zap.Error(err))
		}
	}

	return fields.Answer, true, nil
}

// createAppointment validates the collected fields, resolves the chosen
// facility and inserts the appointment together with the session-flag
// reset in one transaction.
func (s *Service) createAppointment(ctx context.Context, sessionID string, fields models.CollectedFields) (*models.Appointment, *ValidationError, error) {
	if verr := ValidateBookingFields(fields); verr != nil {
		return nil, verr, nil
	}

	facility, err := s.FacilityRepo.GetByID(ctx, fields.ChosenDepartmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve department: %w", err)
	}
	if facility == nil {
		return nil, &ValidationError{Field: "chosen_department_id", Reason: "no such facility"}, nil
	}

	at, err := CombineDateTime(fields.Date, fields.Time)
	if err != nil {
		return nil, &ValidationError{Field: "date/time", Reason: err.Error()}, nil
	}

	appointment := &models.Appointment{
		SessionID:  sessionID,
		Department: facility.Name,
		Time:       at,
		FirstName:  fields.FirstName,
		LastName:   fields.LastName,
		Email:      fields.Email,
		Phone:      fields.Phone,
	}

	if err := s.AppointmentRepo.CreateWithFlagReset(ctx, appointment); err != nil {
		return nil, nil, err
	}
	return appointment, nil, nil
}

// persistExchange appends both chat turns, upserts the summary and mirrors
// the summarizer's appointment_active signal into the session flag. After
// a completed booking the flag was already reset transactionally and is
// left alone.
func (s *Service) persistExchange(ctx context.Context, req models.IntakeRequest, reply, topic, summaryText string, active, booked bool) error {
	if _, err := s.ChatRepo.Append(ctx, models.ChatTurn{
		SessionID: req.SessionID,
		Message:   req.Message,
		Sender:    models.SenderUser,
		Topic:     topic,
	}); err != nil {
		return fmt.Errorf("append user turn: %w", err)
	}

	if _, err := s.ChatRepo.Append(ctx, models.ChatTurn{
		SessionID: req.SessionID,
		Message:   reply,
		Sender:    models.SenderAgent,
		Topic:     topic,
	}); err != nil {
		return fmt.Errorf("append agent turn: %w", err)
	}

	if err := s.SessionRepo.UpsertSummary(ctx, models.Summary{
		SessionID:         req.SessionID,
		SummaryText:       summaryText,
		AppointmentActive: active,
	}); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}

	if !booked {
		if err := s.SessionRepo.SetFlag(ctx, req.SessionID, active); err != nil {
			return fmt.Errorf("set session flag: %w", err)
		}
	}
	return nil
}

func queryPoint(req models.IntakeRequest) *matching.Point {
	if req.Latitude == nil || req.Longitude == nil {
		return nil
	}
	// The facility table's X/Y columns are longitude/latitude.
	return &matching.Point{X: *req.Longitude, Y: *req.Latitude}
}
