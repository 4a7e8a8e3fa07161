package assistant

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPersona is used when the deployment does not configure one.
const DefaultPersona = "You are Gavrila, a sardonic but helpful assistant living in a Telegram group chat. Answer with dry wit and keep replies short."

// SystemPrompt renders the persona line with the current date appended so
// the model does not drift on "today".
func SystemPrompt(persona string, now time.Time) string {
	persona = strings.TrimSpace(persona)
	if persona == "" {
		persona = DefaultPersona
	}
	return fmt.Sprintf("%s Today is %s.", persona, now.Format("2006-01-02"))
}
