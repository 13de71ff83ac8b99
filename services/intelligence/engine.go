package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"frontline/models"
)

// ErrUpstream marks failures of the external model call itself, as opposed
// to validation problems in the caller's input. Handlers map it to a 502.
var ErrUpstream = errors.New("llm upstream failure")

//go:embed prompts/classify.txt
var classifyPromptTemplate string

//go:embed prompts/reply.txt
var replyPromptTemplate string

//go:embed prompts/summarize.txt
var summarizePromptTemplate string

//go:embed prompts/collect.txt
var collectPromptTemplate string

// Fallback classification used when the model's output cannot be parsed.
const (
	DefaultDepartment     = "General"
	DefaultEmergencyLevel = 3
)

// Engine wraps a Client with the four prompt kinds the dialogue needs.
type Engine struct {
	client Client
}

func NewEngine(client Client) *Engine {
	return &Engine{client: client}
}

// Classify assigns a department and emergency level to a citizen message.
// A transport failure is returned as an error; unparsable model output
// degrades to the documented default instead.
func (e *Engine) Classify(ctx context.Context, message string) (models.Classification, error) {
	prompt := renderPrompt(classifyPromptTemplate, map[string]string{
		"message": message,
	})

	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return models.Classification{}, fmt.Errorf("%w: classification call failed: %v", ErrUpstream, err)
	}

	var result models.Classification
	if err := json.Unmarshal([]byte(UnwrapJSON(raw)), &result); err != nil || result.Department == "" {
		return models.Classification{
			Department:     DefaultDepartment,
			EmergencyLevel: DefaultEmergencyLevel,
		}, nil
	}

	result.EmergencyLevel = clampEmergencyLevel(result.EmergencyLevel)
	return result, nil
}

// GenerateReply produces the agent's free-text reply for the normal path.
func (e *Engine) GenerateReply(ctx context.Context, summary string, turns []models.ChatTurn, facilities []models.FacilityDTO, emergencyLevel int, message string) (string, error) {
	prompt := renderPrompt(replyPromptTemplate, map[string]string{
		"summary":         summary,
		"chat_history":    formatTurns(turns),
		"facilities":      formatFacilities(facilities),
		"emergency_level": fmt.Sprint(emergencyLevel),
		"message":         message,
	})

	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: reply generation failed: %v", ErrUpstream, err)
	}
	return strings.TrimSpace(raw), nil
}

// Summarize refreshes the rolling summary and reports whether the citizen
// is mid-booking.
func (e *Engine) Summarize(ctx context.Context, summary, message string) (models.SummaryUpdate, error) {
	prompt := renderPrompt(summarizePromptTemplate, map[string]string{
		"summary": summary,
		"message": message,
	})

	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return models.SummaryUpdate{}, fmt.Errorf("%w: summarize call failed: %v", ErrUpstream, err)
	}

	var result models.SummaryUpdate
	if err := json.Unmarshal([]byte(UnwrapJSON(raw)), &result); err != nil {
		return models.SummaryUpdate{}, fmt.Errorf("%w: summarize returned malformed JSON: %v", ErrUpstream, err)
	}
	return result, nil
}

// CollectFields runs one turn of the booking dialogue.
func (e *Engine) CollectFields(ctx context.Context, summary string, turns []models.ChatTurn, departments []models.FacilityDTO, message string) (models.CollectedFields, error) {
	prompt := renderPrompt(collectPromptTemplate, map[string]string{
		"summary":      summary,
		"chat_history": formatTurns(turns),
		"departments":  formatFacilities(departments),
		"message":      message,
	})

	raw, err := e.client.GenerateContent(ctx, prompt)
	if err != nil {
		return models.CollectedFields{}, fmt.Errorf("%w: field collection call failed: %v", ErrUpstream, err)
	}

	var result models.CollectedFields
	if err := json.Unmarshal([]byte(UnwrapJSON(raw)), &result); err != nil {
		return models.CollectedFields{}, fmt.Errorf("%w: field collection returned malformed JSON: %v", ErrUpstream, err)
	}
	return result, nil
}

func clampEmergencyLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}
