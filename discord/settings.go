package discord

import (
	"context"
	"fmt"

	"github.com/K3das/clementine/store"
	"github.com/K3das/clementine/store/db"
	"github.com/K3das/clementine/transcript"
	"github.com/bwmarrin/discordgo"
)

func userSettingsContext(prefs store.Preferences) *MessageContextUserSettings {
	formatButtons := make([]MessageContextButton, 0, len(transcript.Formats))
	for _, f := range transcript.Formats {
		formatButtons = append(formatButtons, MessageContextButton{
			Label:    f.Label(),
			CustomID: ComponentIDString(ComponentSourceSettings, formatAction(f)),
			Selected: f == prefs.Format,
		})
	}

	return &MessageContextUserSettings{
		FormatLabel:                 prefs.Format.Label(),
		Translate:                   prefs.Translate,
		FormatButtons:               formatButtons,
		TranslateEnableComponentID:  ComponentIDString(ComponentSourceSettings, ComponentActionTranslateEnable),
		TranslateDisableComponentID: ComponentIDString(ComponentSourceSettings, ComponentActionTranslateDisable),
	}
}

func (b *DiscordBot) handleCommandUserSettings(ctx context.Context, e *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	discordUser, err := getInteractionUser(e)
	if err != nil {
		return err
	}

	prefs, err := b.store.GetPreferences(ctx, discordUser.ID)
	if err != nil {
		return fmt.Errorf("getting preferences: %w", err)
	}

	output, err := b.executeMessageTemplate(ctx, "user_settings", MessageContext{
		UserSettings: userSettingsContext(prefs),
	})
	if err != nil {
		return fmt.Errorf("rendering settings: %w", err)
	}

	err = b.discord.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:           discordgo.MessageFlagsEphemeral,
			Content:         output.Content,
			Components:      output.Components,
			Embeds:          output.Embeds,
			AllowedMentions: DefaultAllowedMentions,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending response: %w", err)
	}

	return nil
}

// handleSettingsInteraction applies a settings button and updates the
// settings message in place.
func (b *DiscordBot) handleSettingsInteraction(ctx context.Context, id *ComponentID, e *discordgo.InteractionCreate) error {
	discordUser, err := getInteractionUser(e)
	if err != nil {
		return err
	}

	prefs, err := b.store.GetPreferences(ctx, discordUser.ID)
	if err != nil {
		return fmt.Errorf("getting preferences: %w", err)
	}

	switch id.Action {
	case ComponentActionTranslateEnable, ComponentActionTranslateDisable:
		prefs.Translate = id.Action == ComponentActionTranslateEnable
		err = b.store.UpdateUserTranslate(ctx, db.UpdateUserTranslateParams{
			ID:        discordUser.ID,
			Translate: prefs.Translate,
		})
	default:
		format, ok := formatFromAction(id.Action, formatActionPrefix)
		if !ok {
			return fmt.Errorf("unknown settings action %q", id.Action)
		}
		prefs.Format = format
		err = b.store.UpdateUserDefaultFormat(ctx, db.UpdateUserDefaultFormatParams{
			ID:            discordUser.ID,
			DefaultFormat: string(format),
		})
	}
	if err != nil {
		return DiscordExecutionError{
			Message: "Couldn't update your settings.",
			Err:     fmt.Errorf("updating user: %w", err),
		}
	}

	output, err := b.executeMessageTemplate(ctx, "user_settings", MessageContext{
		UserSettings: userSettingsContext(prefs),
	})
	if err != nil {
		return fmt.Errorf("rendering settings: %w", err)
	}

	err = b.discord.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Flags:           discordgo.MessageFlagsEphemeral,
			Content:         output.Content,
			Components:      output.Components,
			Embeds:          output.Embeds,
			AllowedMentions: DefaultAllowedMentions,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending response: %w", err)
	}

	return nil
}
