package discord

import (
	"context"
	"fmt"

	"github.com/K3das/clementine/transcript"
	"github.com/bwmarrin/discordgo"
)

const (
	CommandNameTranscribe        = "transcribe"
	CommandNameTranscribeMessage = "Transcribe"
	CommandNameUserSettings      = "settings"
)

const (
	CommandOptionFile      = "file"
	CommandOptionFormat    = "format"
	CommandOptionTranslate = "translate"
	CommandOptionLanguage  = "language"
)

func (b *DiscordBot) registerCommands(ctx context.Context) error {
	defaultPerms := int64(discordgo.PermissionViewChannel)
	contexts := &[]discordgo.InteractionContextType{
		discordgo.InteractionContextGuild,
		discordgo.InteractionContextBotDM,
	}

	formatChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(transcript.Formats))
	for _, f := range transcript.Formats {
		formatChoices = append(formatChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  f.Label(),
			Value: string(f),
		})
	}

	createdCommands, err := b.discord.ApplicationCommandBulkOverwrite(b.self.ID, "", []*discordgo.ApplicationCommand{
		{
			Type:                     discordgo.ChatApplicationCommand,
			Name:                     CommandNameTranscribe,
			DefaultMemberPermissions: &defaultPerms,
			Description:              "Transcribe an audio file to text, subtitles or JSON.",
			Contexts:                 contexts,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        CommandOptionFile,
					Description: "Audio file (mp3, wav, m4a, flac or ogg).",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        CommandOptionFormat,
					Description: "Output format, defaults to your /settings.",
					Choices:     formatChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        CommandOptionTranslate,
					Description: "Translate the speech to English, defaults to your /settings.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        CommandOptionLanguage,
					Description: "Spoken language as a code like \"ar\" or \"en\", or \"auto\" to detect it.",
					MaxLength:   16,
				},
			},
		},
		{
			Type:                     discordgo.MessageApplicationCommand,
			Name:                     CommandNameTranscribeMessage,
			DefaultMemberPermissions: &defaultPerms,
			Contexts:                 contexts,
		},
		{
			Type:                     discordgo.ChatApplicationCommand,
			Name:                     CommandNameUserSettings,
			DefaultMemberPermissions: &defaultPerms,
			Description:              "Configure your default output format and translation.",
			Contexts:                 contexts,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}

	b.commandsMu.Lock()
	b.commands = make(map[string]*discordgo.ApplicationCommand)
	for _, command := range createdCommands {
		b.commands[command.Name] = command
	}
	b.commandsMu.Unlock()

	return nil
}

func (b *DiscordBot) getCommand(name string) (*discordgo.ApplicationCommand, bool) {
	b.commandsMu.RLock()
	defer b.commandsMu.RUnlock()
	command, ok := b.commands[name]
	return command, ok
}

func (b *DiscordBot) handleCommandInteraction(ctx context.Context, e *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if _, ok := b.getCommand(data.Name); !ok {
		return fmt.Errorf("unknown command %q", data.Name)
	}

	var commandErr error
	switch data.Name {
	case CommandNameTranscribe:
		commandErr = b.handleCommandTranscribe(ctx, e, data)
	case CommandNameTranscribeMessage:
		commandErr = b.handleCommandTranscribeMessage(ctx, e, data)
	case CommandNameUserSettings:
		commandErr = b.handleCommandUserSettings(ctx, e, data)
	}

	if commandErr != nil {
		b.respondError(ctx, e, "command_error", commandErr)
	}

	return nil
}
