package ai

import (
	"fmt"
	"strings"

	"frontline/models"
)

// renderPrompt substitutes {key} placeholders in a template.
func renderPrompt(template string, values map[string]string) string {
	for key, value := range values {
		template = strings.ReplaceAll(template, "{"+key+"}", value)
	}
	return template
}

// UnwrapJSON strips code-fence markers that models sometimes wrap around
// JSON payloads.
func UnwrapJSON(raw string) string {
	result := strings.TrimSpace(raw)
	result = strings.Trim(result, "`")
	result = strings.TrimSpace(result)
	result = strings.TrimPrefix(result, "json")
	return strings.TrimSpace(result)
}

func formatTurns(turns []models.ChatTurn) string {
	if len(turns) == 0 {
		return "No recent messages"
	}

	var builder strings.Builder
	for _, turn := range turns {
		builder.WriteString(fmt.Sprintf("%s - %s: %s\n",
			turn.CreatedAt.Format("15:04:05"), turn.Sender, turn.Message))
	}
	return builder.String()
}

func formatFacilities(facilities []models.FacilityDTO) string {
	if len(facilities) == 0 {
		return "No matching facilities found"
	}

	var builder strings.Builder
	for _, f := range facilities {
		builder.WriteString(fmt.Sprintf("id=%d | %s | %s | hours: %s\n",
			f.ID, f.Name, f.Amenity, f.OpeningHours))
	}
	return builder.String()
}
