package discord

import (
	"strings"

	"github.com/K3das/clementine/asr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// normalizeLanguage turns user input into the base language code sent to the
// model. Empty input returns fallback.
func normalizeLanguage(input, fallback string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return fallback, nil
	}
	if strings.EqualFold(input, asr.AutoLanguage) {
		return asr.AutoLanguage, nil
	}

	tag, err := language.Parse(input)
	if err != nil {
		return "", DiscordExecutionError{
			Message:   "Unknown language, use a code like \"ar\" or \"en\", or \"auto\".",
			Err:       err,
			UserError: true,
		}
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// languageName is the English display name for a language reported by the
// model. Some backends report codes ("ar"), others names ("arabic").
func languageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == asr.AutoLanguage {
		return "Unknown"
	}

	if len(code) > 3 && !strings.Contains(code, "-") {
		return cases.Title(language.English).String(code)
	}

	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}
