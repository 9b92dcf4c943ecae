package discord

import (
	"context"
	"fmt"

	"github.com/K3das/clementine/utils"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *DiscordBot) handleInteractionCreate(s *discordgo.Session, e *discordgo.InteractionCreate) {
	ctx, log := utils.LogContextWith(context.Background(), b.log, zap.String("initiating_interaction", fmt.Sprintf("/%s/%s/%s", e.GuildID, e.ChannelID, e.ID)))

	defer utils.PanicRecovery(log)

	if !b.isGuildInScope(e.GuildID) {
		return // not a supported guild
	}

	switch e.Type {
	case discordgo.InteractionApplicationCommand:
		data := e.ApplicationCommandData()
		err := b.handleCommandInteraction(ctx, e, data)
		if err != nil {
			log.Error("error handling command interaction", zap.Error(err))
		}
	case discordgo.InteractionMessageComponent:
		data := e.MessageComponentData()
		err := b.handleComponentInteraction(ctx, e, data)
		if err != nil {
			log.Error("error handling component interaction", zap.Error(err))
		}
	}
}

// respondError renders err with the given error template as an ephemeral
// response. Only DiscordExecutionError messages are shown to the user.
func (b *DiscordBot) respondError(ctx context.Context, e *discordgo.InteractionCreate, templateName string, respondErr error) {
	log := utils.GetLogFromContext(ctx, b.log)

	errorMessage, userError := userFacingError(respondErr, "Unknown error occurred.")
	if !userError {
		log.Error("failed to respond to interaction", zap.Error(respondErr))
	}

	data := MessageContext{}
	switch templateName {
	case "command_error":
		data.CommandError = &MessageContextCommandError{Message: errorMessage}
	default:
		data.InteractionError = &MessageContextInteractionError{Message: errorMessage}
	}

	output, err := b.executeMessageTemplate(ctx, templateName, data)
	if err != nil {
		log.Error("failed to render error message", zap.Error(err))
		return
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
	})
	if err != nil {
		log.Error("failed to send response", zap.Error(err))
	}
}

func getInteractionUser(e *discordgo.InteractionCreate) (*discordgo.User, error) {
	var discordUser *discordgo.User
	if e.Member != nil && e.Member.User != nil {
		discordUser = e.Member.User
	} else if e.User != nil {
		discordUser = e.User
	} else {
		return nil, fmt.Errorf("no user found in interaction")
	}

	return discordUser, nil
}
