package agenda

import (
	"regexp"
	"strings"
)

// clientPattern extracts the client name from free-text descriptions shaped
// like "Visita com o cliente João Silva às 15h".
var clientPattern = regexp.MustCompile(`(?i)com [oa] cliente\s+([^,.;\n]+)`)

// ExtractClientName pulls the client name out of a provider event
// description, returning "" when the expected marker is absent.
func ExtractClientName(description string) string {
	match := clientPattern.FindStringSubmatch(description)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"visita", "Visita"},
	{"avaliação", "Avaliação"},
	{"avaliacao", "Avaliação"},
	{"apresentação", "Apresentação"},
	{"apresentacao", "Apresentação"},
	{"vistoria", "Vistoria"},
}

// InferCategory classifies a provider event by keyword match against its
// description, defaulting to "Reunião".
func InferCategory(description string) string {
	lower := strings.ToLower(description)
	for _, entry := range categoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.category
		}
	}
	return "Reunião"
}

// ResponsibleInput carries every field the responsible-party cascade can
// draw from, in priority order.
type ResponsibleInput struct {
	CreatorName    string
	OrganizerName  string
	CreatorEmail   string
	OrganizerEmail string
	Description    string
	CalendarName   string
}

// responsiblePattern matches "responsável: Fulano" markers in descriptions.
var responsiblePattern = regexp.MustCompile(`(?i)respons[áa]vel:?\s+([^,.;\n]+)`)

// InferResponsible resolves the person responsible for a provider event by a
// priority cascade over creator and organizer identities, a description
// marker and finally the selected calendar name, defaulting to
// "Não informado".
func InferResponsible(input ResponsibleInput) string {
	if name := strings.TrimSpace(input.CreatorName); name != "" {
		return name
	}
	if name := strings.TrimSpace(input.OrganizerName); name != "" {
		return name
	}
	if name := localPart(input.CreatorEmail); name != "" {
		return name
	}
	if name := localPart(input.OrganizerEmail); name != "" {
		return name
	}
	if match := responsiblePattern.FindStringSubmatch(input.Description); len(match) >= 2 {
		if name := strings.TrimSpace(match[1]); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(input.CalendarName); name != "" {
		return name
	}
	return "Não informado"
}

// localPart returns the part of an email address before the @, used as a
// human-readable fallback name.
func localPart(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	return email[:at]
}
