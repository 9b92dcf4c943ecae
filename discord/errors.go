package discord

import (
	"context"
	"errors"
)

// userFacingError picks the message to show for err. The second return is
// true when err was caused by the user and doesn't need logging. Timeouts win
// over any message attached further up the chain.
func userFacingError(err error, fallback string) (string, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout exceeded while transcribing.", false
	}
	var discordErr DiscordExecutionError
	if errors.As(err, &discordErr) {
		message := discordErr.Message
		if message == "" {
			message = fallback
		}
		return message, discordErr.UserError
	}
	return fallback, false
}
