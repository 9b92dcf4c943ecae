package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/K3das/clementine/utils"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type MessageOutput struct {
	Content    string                       `json:"content,omitempty"`
	Components []discordgo.MessageComponent `json:"components,omitempty"`
	Embeds     []*discordgo.MessageEmbed    `json:"embeds,omitempty"`
}

type messageOutputRaw struct {
	Content    string                    `json:"content,omitempty"`
	Components []json.RawMessage         `json:"components,omitempty"`
	Embeds     []*discordgo.MessageEmbed `json:"embeds,omitempty"`
}

type MessageContextButton struct {
	Label    string `json:"label"`
	CustomID string `json:"custom_id"`
	Selected bool   `json:"selected"`
}

type MessageContextUserSettings struct {
	FormatLabel                 string                 `json:"format_label"`
	Translate                   bool                   `json:"translate"`
	FormatButtons               []MessageContextButton `json:"format_buttons"`
	TranslateEnableComponentID  string                 `json:"translate_enable_component_id"`
	TranslateDisableComponentID string                 `json:"translate_disable_component_id"`
}
type MessageContextInteractionError struct {
	Message string `json:"message"`
}
type MessageContextCommandError struct {
	Message string `json:"message"`
}

type MessageContextTranscribeProgress struct {
	FileName  string `json:"file_name"`
	Translate bool   `json:"translate"`
}
type MessageContextTranscribeResult struct {
	FileName       string                 `json:"file_name"`
	FormatLabel    string                 `json:"format_label"`
	CodeLanguage   string                 `json:"code_language"`
	Preview        string                 `json:"preview"`
	Truncated      bool                   `json:"truncated"`
	LanguageName   string                 `json:"language_name"`
	Translated     bool                   `json:"translated"`
	SegmentCount   int                    `json:"segment_count"`
	AudioDuration  string                 `json:"audio_duration"`
	ProcessingTime float64                `json:"processing_time"`
	ExportButtons  []MessageContextButton `json:"export_buttons"`
}
type MessageContextTranscribeError struct {
	Message string `json:"message"`
}
type MessageContextExportResult struct {
	FileName    string `json:"file_name"`
	FormatLabel string `json:"format_label"`
}

type MessageContext struct {
	UserSettings     *MessageContextUserSettings     `json:"user_settings,omitempty"`
	InteractionError *MessageContextInteractionError `json:"interaction_error,omitempty"`
	CommandError     *MessageContextCommandError     `json:"command_error,omitempty"`

	TranscribeProgress *MessageContextTranscribeProgress `json:"transcribe_progress,omitempty"`
	TranscribeResult   *MessageContextTranscribeResult   `json:"transcribe_result,omitempty"`
	TranscribeError    *MessageContextTranscribeError    `json:"transcribe_error,omitempty"`
	ExportResult       *MessageContextExportResult       `json:"export_result,omitempty"`

	Timestamp          string                                   `json:"timestamp"`
	RegisteredCommands map[string]*discordgo.ApplicationCommand `json:"registered_commands"`
}

func (b *DiscordBot) executeMessageTemplate(ctx context.Context, messageName string, data MessageContext) (*MessageOutput, error) {
	log := utils.GetLogFromContext(ctx, b.log)

	data.Timestamp = time.Now().UTC().Format(time.RFC3339)
	b.commandsMu.RLock()
	data.RegisteredCommands = b.commands
	jsonOut, err := b.messages.ExecuteMessage(messageName, data)
	b.commandsMu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("executing message %s: %w", messageName, err)
	}

	var outputRaw messageOutputRaw
	err = json.Unmarshal([]byte(jsonOut), &outputRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling output: %w", err)
	}

	output := &MessageOutput{
		Content: outputRaw.Content,
		Embeds:  outputRaw.Embeds,
	}

	if outputRaw.Components != nil {
		for _, c := range outputRaw.Components {
			bytes, err := c.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("marshaling component: %w", err)
			}
			messageComponent, err := discordgo.MessageComponentFromJSON(bytes)
			if err != nil {
				return nil, fmt.Errorf("unmarshaling component: %w", err)
			}
			output.Components = append(output.Components, messageComponent)
		}
	}

	log.With(zap.Any("output", output)).Debug("got message template output")

	return output, nil
}
