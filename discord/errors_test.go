package discord

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserFacingError(t *testing.T) {
	message, userError := userFacingError(DiscordExecutionError{Message: "File is too big.", UserError: true}, "fallback")
	assert.Equal(t, "File is too big.", message)
	assert.True(t, userError)

	message, userError = userFacingError(DiscordExecutionError{Err: fmt.Errorf("boom")}, "fallback")
	assert.Equal(t, "fallback", message)
	assert.False(t, userError)

	message, _ = userFacingError(fmt.Errorf("boom"), "fallback")
	assert.Equal(t, "fallback", message)
}

func TestUserFacingErrorTimeoutWins(t *testing.T) {
	err := DiscordExecutionError{
		Message: "Error generating transcript.",
		Err:     fmt.Errorf("generating transcript: %w", context.DeadlineExceeded),
	}

	message, userError := userFacingError(err, "fallback")
	assert.Equal(t, "Timeout exceeded while transcribing.", message)
	assert.False(t, userError)
}
