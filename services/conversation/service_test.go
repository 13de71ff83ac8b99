package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"frontline/models"
	ai "frontline/services/intelligence"
	"frontline/services/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedClient answers each prompt kind with a canned response, keyed on
// a distinctive phrase from the embedded template.
type scriptedClient struct {
	classify  string
	reply     string
	summarize string
	collect   string

	classifyErr  error
	summarizeErr error
}

func (c *scriptedClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "triage classifier"):
		return c.classify, c.classifyErr
	case strings.Contains(prompt, "collecting appointment details"):
		return c.collect, nil
	case strings.Contains(prompt, "rolling summary"):
		return c.summarize, c.summarizeErr
	default:
		return c.reply, nil
	}
}

type fakeChatRepo struct {
	turns []models.ChatTurn
}

func (r *fakeChatRepo) Append(_ context.Context, turn models.ChatTurn) (string, error) {
	turn.CreatedAt = time.Now().UTC()
	r.turns = append(r.turns, turn)
	return "turn-id", nil
}

func (r *fakeChatRepo) GetRecent(_ context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	var out []models.ChatTurn
	for _, turn := range r.turns {
		if turn.SessionID == sessionID {
			out = append(out, turn)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeSessionRepo struct {
	flags     map[string]bool
	summaries map[string]models.Summary
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		flags:     map[string]bool{},
		summaries: map[string]models.Summary{},
	}
}

func (r *fakeSessionRepo) GetFlag(_ context.Context, sessionID string) (*models.SessionFlag, error) {
	v, ok := r.flags[sessionID]
	if !ok {
		return nil, nil
	}
	return &models.SessionFlag{SessionID: sessionID, WantsAppointment: v}, nil
}

func (r *fakeSessionRepo) SetFlag(_ context.Context, sessionID string, wantsAppointment bool) error {
	r.flags[sessionID] = wantsAppointment
	return nil
}

func (r *fakeSessionRepo) GetSummary(_ context.Context, sessionID string) (*models.Summary, error) {
	s, ok := r.summaries[sessionID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) UpsertSummary(_ context.Context, summary models.Summary) error {
	r.summaries[summary.SessionID] = summary
	return nil
}

type fakeFacilityRepo struct {
	facilities []models.Facility
}

func (r *fakeFacilityRepo) SearchByDepartment(_ context.Context, query string) ([]models.Facility, error) {
	if query == "" {
		return []models.Facility{}, nil
	}
	var matched []models.Facility
	for _, f := range r.facilities {
		if strings.Contains(strings.ToLower(f.Amenity), strings.ToLower(query)) {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func (r *fakeFacilityRepo) GetByID(_ context.Context, id int64) (*models.Facility, error) {
	for _, f := range r.facilities {
		if f.ID == id {
			facility := f
			return &facility, nil
		}
	}
	return nil, nil
}

// fakeAppointmentRepo mirrors the transactional contract: creating an
// appointment also resets the session flag.
type fakeAppointmentRepo struct {
	sessions     *fakeSessionRepo
	appointments []models.Appointment
	createErr    error
}

func (r *fakeAppointmentRepo) CreateWithFlagReset(_ context.Context, appointment *models.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	appointment.ID = "appt-1"
	appointment.CreatedAt = time.Now().UTC()
	r.appointments = append(r.appointments, *appointment)
	r.sessions.flags[appointment.SessionID] = false
	return nil
}

func (r *fakeAppointmentRepo) GetAll(_ context.Context) ([]models.Appointment, error) {
	return r.appointments, nil
}

func (r *fakeAppointmentRepo) GetBySessionID(_ context.Context, sessionID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordedReminder struct {
	appointments []*models.Appointment
}

func (r *recordedReminder) ScheduleReminder(_ context.Context, appointment *models.Appointment) error {
	r.appointments = append(r.appointments, appointment)
	return nil
}

type fixture struct {
	svc          *Service
	chats        *fakeChatRepo
	sessions     *fakeSessionRepo
	appointments *fakeAppointmentRepo
	reminders    *recordedReminder
}

func newFixture(client ai.Client) *fixture {
	chats := &fakeChatRepo{}
	sessions := newFakeSessionRepo()
	facilities := &fakeFacilityRepo{facilities: []models.Facility{
		{ID: 1, X: 67.0, Y: 24.9, Amenity: "Hospital", Name: "Civil Hospital", OpeningHours: "24/7"},
		{ID: 2, X: 67.1, Y: 24.95, Amenity: "Hospital", Name: "Jinnah Hospital", OpeningHours: "24/7"},
	}}
	appointments := &fakeAppointmentRepo{sessions: sessions}
	reminders := &recordedReminder{}

	svc := &Service{
		Engine:          ai.NewEngine(client),
		Matching:        &matching.DefaultMatchingService{FacilityRepo: facilities},
		FacilityRepo:    facilities,
		ChatRepo:        chats,
		SessionRepo:     sessions,
		AppointmentRepo: appointments,
		Reminders:       reminders,
		DefaultDeadline: 5 * time.Second,
		Logger:          zap.NewNop(),
	}

	return &fixture{svc: svc, chats: chats, sessions: sessions, appointments: appointments, reminders: reminders}
}

func intakeRequest(message string) models.IntakeRequest {
	lat, lng := 24.9210952612059, 67.069987889853
	return models.IntakeRequest{
		Message:   message,
		SessionID: "23423",
		Latitude:  &lat,
		Longitude: &lng,
	}
}

func TestNormalPathWithoutFlagRow(t *testing.T) {
	client := &scriptedClient{
		classify:  `{"department": "Hospital", "emergency_level": 4}`,
		reply:     "Civil Hospital is closest. Want me to book an appointment?",
		summarize: `{"updated_summary": "Citizen asked about hospitals.", "appointment_active": false}`,
	}
	fix := newFixture(client)

	reply, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("Where is the nearest hospital?"))
	require.NoError(t, err)
	assert.Equal(t, "Civil Hospital is closest. Want me to book an appointment?", reply)

	// Both turns persisted with the classified department as topic.
	require.Len(t, fix.chats.turns, 2)
	assert.Equal(t, models.SenderUser, fix.chats.turns[0].Sender)
	assert.Equal(t, models.SenderAgent, fix.chats.turns[1].Sender)
	assert.Equal(t, "Hospital", fix.chats.turns[0].Topic)

	summary := fix.sessions.summaries["23423"]
	assert.Equal(t, "Citizen asked about hospitals.", summary.SummaryText)
	assert.False(t, summary.AppointmentActive)
	assert.False(t, fix.sessions.flags["23423"])
}

func TestExplicitFalseFlagRoutesNormal(t *testing.T) {
	client := &scriptedClient{
		classify:  `{"department": "Pharmacy", "emergency_level": 5}`,
		reply:     "Here are nearby pharmacies.",
		summarize: `{"updated_summary": "Pharmacy question.", "appointment_active": false}`,
	}
	fix := newFixture(client)
	fix.sessions.flags["23423"] = false

	_, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("Need my prescription refilled"))
	require.NoError(t, err)
	assert.Empty(t, fix.appointments.appointments)
}

func TestSummarizerMovesSessionIntoBookingMode(t *testing.T) {
	client := &scriptedClient{
		classify:  `{"department": "Hospital", "emergency_level": 4}`,
		reply:     "I can book that for you. What is your first name?",
		summarize: `{"updated_summary": "Citizen wants an appointment.", "appointment_active": true}`,
	}
	fix := newFixture(client)

	_, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("Please book me an appointment"))
	require.NoError(t, err)
	assert.True(t, fix.sessions.flags["23423"])
	assert.True(t, fix.sessions.summaries["23423"].AppointmentActive)
}

func TestMalformedClassificationStillCompletes(t *testing.T) {
	client := &scriptedClient{
		classify:  "this is not machine readable",
		reply:     "How can I help?",
		summarize: `{"updated_summary": "Greeting.", "appointment_active": false}`,
	}
	fix := newFixture(client)

	reply, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("hello"))
	require.NoError(t, err)
	assert.Equal(t, "How can I help?", reply)
	require.Len(t, fix.chats.turns, 2)
	// Fallback classification is used as the topic.
	assert.Equal(t, "General", fix.chats.turns[0].Topic)
}

func TestUpstreamFailureLeavesNoWrites(t *testing.T) {
	client := &scriptedClient{classifyErr: errors.New("connection reset")}
	fix := newFixture(client)

	_, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("help"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrUpstream)

	assert.Empty(t, fix.chats.turns)
	assert.Empty(t, fix.sessions.summaries)
	assert.Empty(t, fix.appointments.appointments)
}

func TestSummarizeFailureLeavesNoWrites(t *testing.T) {
	client := &scriptedClient{
		classify:     `{"department": "Hospital", "emergency_level": 3}`,
		reply:        "Here you go.",
		summarizeErr: errors.New("timeout"),
	}
	fix := newFixture(client)

	_, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("hospital please"))
	require.Error(t, err)
	assert.Empty(t, fix.chats.turns)
	assert.Empty(t, fix.sessions.summaries)
}

func TestBookingPathAsksForMissingFields(t *testing.T) {
	client := &scriptedClient{
		classify:  `{"department": "Hospital", "emergency_level": 4}`,
		collect:   `{"answer": "What is your email address?", "first_name": "Amina", "all_fields_collected": false}`,
		summarize: `{"updated_summary": "Collecting booking details.", "appointment_active": true}`,
	}
	fix := newFixture(client)
	fix.sessions.flags["23423"] = true

	reply, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("My name is Amina"))
	require.NoError(t, err)
	assert.Equal(t, "What is your email address?", reply)
	assert.Empty(t, fix.appointments.appointments)
	assert.True(t, fix.sessions.flags["23423"])
}

func TestBookingCompletionCreatesAppointmentAndResetsFlag(t *testing.T) {
	client := &scriptedClient{
		classify: `{"department": "Hospital", "emergency_level": 4}`,
		collect: `{"answer": "You're booked for March 14 at 09:30.", "first_name": "Amina",
			"last_name": "Khan", "email": "amina.khan@example.com", "phone": "+92 300 1234567",
			"chosen_department_id": 1, "date": "2025-03-14", "time": "09:30",
			"all_fields_collected": true}`,
		// The summarizer still claims an active booking; the completed
		// transaction's reset must win.
		summarize: `{"updated_summary": "Booking confirmed.", "appointment_active": true}`,
	}
	fix := newFixture(client)
	fix.sessions.flags["23423"] = true

	reply, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("09:30 works for me"))
	require.NoError(t, err)
	assert.Equal(t, "You're booked for March 14 at 09:30.", reply)

	require.Len(t, fix.appointments.appointments, 1)
	appt := fix.appointments.appointments[0]
	assert.Equal(t, "23423", appt.SessionID)
	assert.Equal(t, "Civil Hospital", appt.Department)
	assert.Equal(t, time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC), appt.Time)
	assert.Equal(t, "amina.khan@example.com", appt.Email)

	assert.False(t, fix.sessions.flags["23423"])
	assert.False(t, fix.sessions.summaries["23423"].AppointmentActive)

	require.Len(t, fix.reminders.appointments, 1)
	assert.Equal(t, "appt-1", fix.reminders.appointments[0].ID)
}

func TestBookingRejectsInvalidCalendarDate(t *testing.T) {
	client := &scriptedClient{
		classify: `{"department": "Hospital", "emergency_level": 4}`,
		collect: `{"answer": "Did you mean another date?", "first_name": "Amina",
			"last_name": "Khan", "email": "amina.khan@example.com",
			"chosen_department_id": 1, "date": "2025-02-30", "time": "09:30",
			"all_fields_collected": true}`,
		summarize: `{"updated_summary": "Still collecting.", "appointment_active": true}`,
	}
	fix := newFixture(client)
	fix.sessions.flags["23423"] = true

	reply, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("book it for Feb 30"))
	require.NoError(t, err)
	assert.Equal(t, "Did you mean another date?", reply)
	assert.Empty(t, fix.appointments.appointments)
	assert.True(t, fix.sessions.flags["23423"])
}

func TestBookingRejectsUnknownFacility(t *testing.T) {
	client := &scriptedClient{
		classify: `{"department": "Hospital", "emergency_level": 4}`,
		collect: `{"answer": "Which facility would you like?", "first_name": "Amina",
			"last_name": "Khan", "email": "amina.khan@example.com",
			"chosen_department_id": 999, "date": "2025-03-14", "time": "09:30",
			"all_fields_collected": true}`,
		summarize: `{"updated_summary": "Still collecting.", "appointment_active": true}`,
	}
	fix := newFixture(client)
	fix.sessions.flags["23423"] = true

	reply, err := fix.svc.ProcessMessage(context.Background(), intakeRequest("facility 999 please"))
	require.NoError(t, err)
	assert.Equal(t, "Which facility would you like?", reply)
	assert.Empty(t, fix.appointments.appointments)
}

func TestMissingCoordinatesStillAnswers(t *testing.T) {
	client := &scriptedClient{
		classify:  `{"department": "Hospital", "emergency_level": 3}`,
		reply:     "Please share your location so I can find nearby facilities.",
		summarize: `{"updated_summary": "No location given.", "appointment_active": false}`,
	}
	fix := newFixture(client)

	req := models.IntakeRequest{Message: "find a hospital", SessionID: "23423"}
	reply, err := fix.svc.ProcessMessage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Please share your location so I can find nearby facilities.", reply)
}
