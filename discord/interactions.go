package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/K3das/clementine/store"
	"github.com/K3das/clementine/transcript"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	ComponentSourceSettings = ComponentIDSource("settings")
	ComponentSourceResult   = ComponentIDSource("result")

	ComponentActionTranslateEnable  = ComponentIDAction("translate_enable")
	ComponentActionTranslateDisable = ComponentIDAction("translate_disable")
)

const (
	exportActionPrefix = "export_"
	formatActionPrefix = "format_"
)

func exportAction(f transcript.Format) ComponentIDAction {
	return ComponentIDAction(exportActionPrefix + string(f))
}

func formatAction(f transcript.Format) ComponentIDAction {
	return ComponentIDAction(formatActionPrefix + string(f))
}

// formatFromAction parses the format out of an action like "export_srt".
func formatFromAction(action ComponentIDAction, prefix string) (transcript.Format, bool) {
	name, found := strings.CutPrefix(string(action), prefix)
	if !found {
		return "", false
	}
	format, err := transcript.ParseFormat(name)
	if err != nil {
		return "", false
	}
	return format, true
}

func (b *DiscordBot) handleComponentInteraction(ctx context.Context, e *discordgo.InteractionCreate, data discordgo.MessageComponentInteractionData) error {
	if data.ComponentType != discordgo.ButtonComponent {
		return nil
	}

	componentID, err := ParseComponentID(data.CustomID)
	if err != nil {
		return nil
	}

	var interactionErr error

	switch componentID.Source {
	case ComponentSourceResult:
		if format, ok := formatFromAction(componentID.Action, exportActionPrefix); ok {
			interactionErr = b.handleExportInteraction(ctx, componentID, format, e)
		}
	case ComponentSourceSettings:
		interactionErr = b.handleSettingsInteraction(ctx, componentID, e)
	}

	if interactionErr != nil {
		b.respondError(ctx, e, "interaction_error", interactionErr)
	}

	return nil
}

// handleExportInteraction re-renders a stored transcription in another format
// and sends it back to whoever pressed the button.
func (b *DiscordBot) handleExportInteraction(ctx context.Context, id *ComponentID, format transcript.Format, e *discordgo.InteractionCreate) error {
	transcriptionID, err := uuid.Parse(id.Ref)
	if err != nil {
		return fmt.Errorf("parsing transcription id: %w", err)
	}

	stored, err := b.store.LoadTranscription(ctx, transcriptionID)
	if errors.Is(err, store.ErrTranscriptionNotFound) || errors.Is(err, store.ErrTranscriptionNotDone) {
		return DiscordExecutionError{
			Message:   "That transcription isn't available anymore.",
			Err:       err,
			UserError: true,
		}
	} else if err != nil {
		return fmt.Errorf("loading transcription: %w", err)
	}

	rendered, err := transcript.Render(format, stored.Segments)
	if err != nil {
		return fmt.Errorf("rendering transcript: %w", err)
	}

	output, err := b.executeMessageTemplate(ctx, "export_result", MessageContext{
		ExportResult: &MessageContextExportResult{
			FileName:    stored.FileName,
			FormatLabel: format.Label(),
		},
	})
	if err != nil {
		return fmt.Errorf("rendering export message: %w", err)
	}

	err = b.discord.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:           discordgo.MessageFlagsEphemeral,
			Content:         output.Content,
			Components:      output.Components,
			Embeds:          output.Embeds,
			Files:           []*discordgo.File{transcriptFile(format, rendered)},
			AllowedMentions: DefaultAllowedMentions,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending response: %w", err)
	}

	return nil
}
