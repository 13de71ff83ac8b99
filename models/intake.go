package models

// IntakeRequest is the payload coming from the frontend into /api/frontline/message.
type IntakeRequest struct {
	Message         string   `json:"message"`
	SessionID       string   `json:"session_id"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	LatencyBudgetMs int      `json:"latency_budget_ms,omitempty"`
}

// IntakeResponse is what the intake handler returns to the frontend.
type IntakeResponse struct {
	AgentResponse string `json:"agent_response"`
}

// Classification is the department/urgency assignment for one user message.
// EmergencyLevel runs from 1 (critical) to 5 (low priority).
type Classification struct {
	Department     string `json:"department"`
	EmergencyLevel int    `json:"emergency_level"`
}

// SummaryUpdate is the summarizer's output for one processed message.
type SummaryUpdate struct {
	UpdatedSummary    string `json:"updated_summary"`
	AppointmentActive bool   `json:"appointment_active"`
}

// CollectedFields is the booking dialogue's (partial or complete) field set.
// AllFieldsCollected is an external claim and is never acted on before the
// fields pass local validation.
type CollectedFields struct {
	Answer             string `json:"answer"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	ChosenDepartmentID int64  `json:"chosen_department_id"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	AllFieldsCollected bool   `json:"all_fields_collected"`
}
