package discord

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/store"
	"github.com/K3das/clementine/transcript"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandData(options ...*discordgo.ApplicationCommandInteractionDataOption) discordgo.ApplicationCommandInteractionData {
	return discordgo.ApplicationCommandInteractionData{
		Name: CommandNameTranscribe,
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Attachments: map[string]*discordgo.MessageAttachment{
				"123": {ID: "123", Filename: "voice.m4a", ContentType: "audio/x-m4a", Size: 1024},
			},
		},
		Options: options,
	}
}

func option(name string, t discordgo.ApplicationCommandOptionType, value any) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: t, Value: value}
}

func TestParseTranscribeOptionsDefaults(t *testing.T) {
	req, err := parseTranscribeOptions(
		commandData(option(CommandOptionFile, discordgo.ApplicationCommandOptionAttachment, "123")),
		store.Preferences{Format: transcript.SubRip, Translate: true},
		"ar",
	)
	require.NoError(t, err)

	assert.Equal(t, "voice.m4a", req.Attachment.Filename)
	assert.Equal(t, transcript.SubRip, req.Format)
	assert.Equal(t, asr.TaskTranslate, req.Task)
	assert.Equal(t, "ar", req.Language)
}

func TestParseTranscribeOptionsOverrides(t *testing.T) {
	req, err := parseTranscribeOptions(
		commandData(
			option(CommandOptionFile, discordgo.ApplicationCommandOptionAttachment, "123"),
			option(CommandOptionFormat, discordgo.ApplicationCommandOptionString, "json"),
			option(CommandOptionTranslate, discordgo.ApplicationCommandOptionBoolean, false),
			option(CommandOptionLanguage, discordgo.ApplicationCommandOptionString, "en-GB"),
		),
		store.Preferences{Format: transcript.SubRip, Translate: true},
		"ar",
	)
	require.NoError(t, err)

	assert.Equal(t, transcript.JSON, req.Format)
	assert.Equal(t, asr.TaskTranscribe, req.Task)
	assert.Equal(t, "en", req.Language)
}

func TestParseTranscribeOptionsErrors(t *testing.T) {
	prefs := store.Preferences{Format: transcript.PlainText}

	_, err := parseTranscribeOptions(commandData(), prefs, "ar")
	message, userError := userFacingError(err, "")
	assert.True(t, userError)
	assert.Equal(t, "Attach an audio file to transcribe.", message)

	_, err = parseTranscribeOptions(commandData(
		option(CommandOptionFile, discordgo.ApplicationCommandOptionAttachment, "123"),
		option(CommandOptionFormat, discordgo.ApplicationCommandOptionString, "vtt"),
	), prefs, "ar")
	assert.ErrorIs(t, err, transcript.ErrUnknownFormat)
}

func TestFindAudioAttachment(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		TargetID: "m1",
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Messages: map[string]*discordgo.Message{
				"m1": {ID: "m1", Attachments: []*discordgo.MessageAttachment{
					{Filename: "cat.png", ContentType: "image/png"},
					{Filename: "Lecture.FLAC"},
				}},
				"m2": {ID: "m2", Attachments: []*discordgo.MessageAttachment{
					{Filename: "notes.txt", ContentType: "text/plain"},
				}},
			},
		},
	}

	attachment, err := findAudioAttachment(data)
	require.NoError(t, err)
	assert.Equal(t, "Lecture.FLAC", attachment.Filename)

	data.TargetID = "m2"
	_, err = findAudioAttachment(data)
	var discordErr DiscordExecutionError
	require.True(t, errors.As(err, &discordErr))
	assert.True(t, discordErr.UserError)

	data.TargetID = "missing"
	_, err = findAudioAttachment(data)
	assert.Error(t, err)
}

func TestCheckAttachment(t *testing.T) {
	b := &DiscordBot{limits: Limits{MaxInputFileSize: 1024 * 1024, MaxDuration: 60}}

	assert.NoError(t, b.checkAttachment(&discordgo.MessageAttachment{Filename: "a.mp3", Size: 1024}))

	err := b.checkAttachment(&discordgo.MessageAttachment{Filename: "a.mp3", Size: 2 * 1024 * 1024})
	message, userError := userFacingError(err, "")
	assert.True(t, userError)
	assert.Equal(t, "File is too big, the limit is 1.0 MiB.", message)

	err = b.checkAttachment(&discordgo.MessageAttachment{Filename: "voice-message.ogg", ContentType: "audio/ogg", DurationSecs: 90})
	message, _ = userFacingError(err, "")
	assert.Equal(t, "Audio is too long, the limit is 1m0s.", message)

	err = b.checkAttachment(&discordgo.MessageAttachment{Filename: "movie.mkv", ContentType: "video/x-matroska"})
	_, userError = userFacingError(err, "")
	assert.True(t, userError)
}

func TestPreviewTranscript(t *testing.T) {
	preview, truncated := previewTranscript("short")
	assert.Equal(t, "short", preview)
	assert.False(t, truncated)

	long := strings.Repeat("ب", maxPreviewLength+10)
	preview, truncated = previewTranscript(long)
	assert.True(t, truncated)
	assert.Len(t, []rune(preview), maxPreviewLength)
	assert.True(t, strings.HasSuffix(preview, "…"))

	preview, _ = previewTranscript("a ``` b")
	assert.NotContains(t, preview, "```")
}

func TestBuildTranscribeResult(t *testing.T) {
	id := uuid.MustParse("5f1d7c3e-8a4b-4a8e-9a55-1f1a2b3c4d5e")
	req := &transcribeRequest{
		Attachment: &discordgo.MessageAttachment{Filename: "voice.m4a"},
		Format:     transcript.SubRip,
		Task:       asr.TaskTranslate,
	}
	output := &asr.ASROutput{
		Segments:   []transcript.Segment{{Start: 0, End: 2, Text: "hello"}, {Start: 2, End: 5, Text: "world"}},
		Language:   "ar",
		Translated: true,
	}

	result := buildTranscribeResult(req, output, "rendered", id, 5.4, 1.5)

	assert.Equal(t, "voice.m4a", result.FileName)
	assert.Equal(t, "SRT", result.FormatLabel)
	assert.Equal(t, "srt", result.CodeLanguage)
	assert.Equal(t, "rendered", result.Preview)
	assert.Equal(t, "Arabic", result.LanguageName)
	assert.True(t, result.Translated)
	assert.Equal(t, 2, result.SegmentCount)
	assert.Equal(t, "5s", result.AudioDuration)
	assert.Equal(t, []MessageContextButton{
		{Label: "TXT", CustomID: "c:result:export_txt:" + id.String()},
		{Label: "JSON", CustomID: "c:result:export_json:" + id.String()},
	}, result.ExportButtons)
}

func TestTranscriptFile(t *testing.T) {
	file := transcriptFile(transcript.JSON, "[]")
	assert.Equal(t, "transcript.json", file.Name)
	assert.Equal(t, "application/json; charset=utf-8", file.ContentType)

	data, err := io.ReadAll(file.Reader)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFormatFromAction(t *testing.T) {
	format, ok := formatFromAction(exportAction(transcript.SubRip), exportActionPrefix)
	assert.True(t, ok)
	assert.Equal(t, transcript.SubRip, format)

	_, ok = formatFromAction("export_vtt", exportActionPrefix)
	assert.False(t, ok)

	_, ok = formatFromAction(formatAction(transcript.JSON), exportActionPrefix)
	assert.False(t, ok)
}

func TestUserSettingsContext(t *testing.T) {
	settings := userSettingsContext(store.Preferences{Format: transcript.JSON, Translate: true})

	assert.Equal(t, "JSON", settings.FormatLabel)
	assert.True(t, settings.Translate)
	require.Len(t, settings.FormatButtons, len(transcript.Formats))
	for _, button := range settings.FormatButtons {
		assert.Equal(t, button.Label == "JSON", button.Selected, button.Label)
	}
	assert.Equal(t, "c:settings:format_txt", settings.FormatButtons[0].CustomID)
	assert.Equal(t, "c:settings:translate_disable", settings.TranslateDisableComponentID)
}
