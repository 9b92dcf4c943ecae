package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/media"
	"github.com/K3das/clementine/store"
	"github.com/K3das/clementine/transcript"
	"github.com/K3das/clementine/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultTranscriptionTimeout = 10 * time.Minute

// the embed description limit is 4096, leave room for the code fence
const maxPreviewLength = 3500

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".flac": {},
	".ogg":  {},
	".oga":  {},
	".opus": {},
}

type transcribeRequest struct {
	Attachment *discordgo.MessageAttachment
	Format     transcript.Format
	Task       asr.Task
	Language   string
}

func isAudioAttachment(a *discordgo.MessageAttachment) bool {
	if strings.HasPrefix(a.ContentType, "audio/") {
		return true
	}
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(a.Filename))]
	return ok
}

func taskFor(translate bool) asr.Task {
	if translate {
		return asr.TaskTranslate
	}
	return asr.TaskTranscribe
}

// parseTranscribeOptions builds a request from /transcribe options, filling
// anything unset from the user's preferences.
func parseTranscribeOptions(data discordgo.ApplicationCommandInteractionData, prefs store.Preferences, defaultLanguage string) (*transcribeRequest, error) {
	req := &transcribeRequest{
		Format:   prefs.Format,
		Task:     taskFor(prefs.Translate),
		Language: defaultLanguage,
	}

	for _, opt := range data.Options {
		switch opt.Name {
		case CommandOptionFile:
			id, _ := opt.Value.(string)
			if data.Resolved != nil {
				req.Attachment = data.Resolved.Attachments[id]
			}
		case CommandOptionFormat:
			format, err := transcript.ParseFormat(opt.StringValue())
			if err != nil {
				return nil, DiscordExecutionError{
					Message:   "Unknown output format.",
					Err:       err,
					UserError: true,
				}
			}
			req.Format = format
		case CommandOptionTranslate:
			req.Task = taskFor(opt.BoolValue())
		case CommandOptionLanguage:
			language, err := normalizeLanguage(opt.StringValue(), defaultLanguage)
			if err != nil {
				return nil, err
			}
			req.Language = language
		}
	}

	if req.Attachment == nil {
		return nil, DiscordExecutionError{
			Message:   "Attach an audio file to transcribe.",
			Err:       fmt.Errorf("no attachment resolved"),
			UserError: true,
		}
	}

	return req, nil
}

// findAudioAttachment returns the first audio attachment of the message a
// message command was used on.
func findAudioAttachment(data discordgo.ApplicationCommandInteractionData) (*discordgo.MessageAttachment, error) {
	if data.Resolved == nil {
		return nil, fmt.Errorf("no resolved data")
	}
	message, ok := data.Resolved.Messages[data.TargetID]
	if !ok {
		return nil, fmt.Errorf("target message %s not resolved", data.TargetID)
	}

	for _, attachment := range message.Attachments {
		if isAudioAttachment(attachment) {
			return attachment, nil
		}
	}

	return nil, DiscordExecutionError{
		Message:   "That message doesn't have an audio file.",
		Err:       fmt.Errorf("no audio attachment on %s", message.ID),
		UserError: true,
	}
}

func (b *DiscordBot) handleCommandTranscribe(ctx context.Context, e *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	discordUser, err := getInteractionUser(e)
	if err != nil {
		return err
	}

	prefs, err := b.store.GetPreferences(ctx, discordUser.ID)
	if err != nil {
		return fmt.Errorf("getting preferences: %w", err)
	}

	req, err := parseTranscribeOptions(data, prefs, b.defaultLanguage)
	if err != nil {
		return err
	}

	return b.startTranscriptionJob(ctx, e, discordUser, req)
}

func (b *DiscordBot) handleCommandTranscribeMessage(ctx context.Context, e *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	discordUser, err := getInteractionUser(e)
	if err != nil {
		return err
	}

	attachment, err := findAudioAttachment(data)
	if err != nil {
		return err
	}

	prefs, err := b.store.GetPreferences(ctx, discordUser.ID)
	if err != nil {
		return fmt.Errorf("getting preferences: %w", err)
	}

	return b.startTranscriptionJob(ctx, e, discordUser, &transcribeRequest{
		Attachment: attachment,
		Format:     prefs.Format,
		Task:       taskFor(prefs.Translate),
		Language:   b.defaultLanguage,
	})
}

// checkAttachment rejects attachments that are over the limits before
// anything is downloaded. Discord only reports a duration for voice messages.
func (b *DiscordBot) checkAttachment(a *discordgo.MessageAttachment) error {
	if !isAudioAttachment(a) {
		return DiscordExecutionError{
			Message:   "Unsupported file type, send an mp3, wav, m4a, flac or ogg file.",
			Err:       fmt.Errorf("attachment content type %q", a.ContentType),
			UserError: true,
		}
	}
	if a.Size > b.limits.MaxInputFileSize {
		return DiscordExecutionError{
			Message:   fmt.Sprintf("File is too big, the limit is %s.", humanize.IBytes(uint64(b.limits.MaxInputFileSize))),
			Err:       fmt.Errorf("attachment size %d", a.Size),
			UserError: true,
		}
	}
	if b.limits.MaxDuration > 0 && a.DurationSecs > b.limits.MaxDuration {
		return tooLongError(a.DurationSecs, b.limits.MaxDuration)
	}
	return nil
}

func tooLongError(duration, limit float64) error {
	return DiscordExecutionError{
		Message:   fmt.Sprintf("Audio is too long, the limit is %s.", formatSeconds(limit)),
		Err:       fmt.Errorf("audio duration %fs", duration),
		UserError: true,
	}
}

func formatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

type transcriptionJob struct {
	id          uuid.UUID
	interaction *discordgo.Interaction
	userID      string
	request     *transcribeRequest
}

// startTranscriptionJob answers the interaction with a progress message and
// transcribes in the background, editing the response once done.
func (b *DiscordBot) startTranscriptionJob(ctx context.Context, e *discordgo.InteractionCreate, discordUser *discordgo.User, req *transcribeRequest) error {
	log := utils.GetLogFromContext(ctx, b.log)

	if err := b.checkAttachment(req.Attachment); err != nil {
		return err
	}

	renderedProgress, err := b.executeMessageTemplate(ctx, "transcribe_progress", MessageContext{
		TranscribeProgress: &MessageContextTranscribeProgress{
			FileName:  req.Attachment.Filename,
			Translate: req.Task == asr.TaskTranslate,
		},
	})
	if err != nil {
		return fmt.Errorf("rendering progress: %w", err)
	}

	err = b.discord.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         renderedProgress.Content,
			Embeds:          renderedProgress.Embeds,
			Components:      renderedProgress.Components,
			AllowedMentions: DefaultAllowedMentions,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sending progress response: %w", err)
	}

	job := &transcriptionJob{
		interaction: e.Interaction,
		userID:      discordUser.ID,
		request:     req,
	}

	log = log.With(
		zap.String("user_id", discordUser.ID),
		zap.String("file_name", req.Attachment.Filename),
		zap.String("format", string(req.Format)),
		zap.String("task", string(req.Task)),
	)

	utils.Go(log, func() {
		ctx := utils.DetachedLogContext(ctx)

		timeout := b.limits.Timeout
		if timeout <= 0 {
			timeout = DefaultTranscriptionTimeout
		}
		jobCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		jobErr := b.runTranscription(jobCtx, job)
		if jobErr == nil {
			return
		}

		errorMessage, userError := userFacingError(jobErr, "Unknown error occurred.")
		if userError {
			log.Info("transcription rejected", zap.Error(jobErr))
		} else {
			log.Error("failed to transcribe", zap.Error(jobErr))
		}

		if job.id != uuid.Nil {
			if err := b.store.FailTranscription(ctx, job.id); err != nil {
				log.Error("failed to mark transcription as failed in db", zap.Error(err))
			}
		}

		renderedError, err := b.executeMessageTemplate(ctx, "transcribe_error", MessageContext{
			TranscribeError: &MessageContextTranscribeError{
				Message: errorMessage,
			},
		})
		if err != nil {
			log.Error("failed to render error message", zap.Error(err))
			return
		}

		if _, err := b.discord.InteractionResponseEdit(job.interaction, &discordgo.WebhookEdit{
			Content:         &renderedError.Content,
			Embeds:          &renderedError.Embeds,
			Components:      &renderedError.Components,
			Attachments:     &[]*discordgo.MessageAttachment{},
			AllowedMentions: DefaultAllowedMentions,
		}, discordgo.WithContext(ctx)); err != nil {
			log.Error("failed to update response with transcription error", zap.Error(err))
		}
	})

	return nil
}

// runTranscription performs the transcription, creating it in the database.
//
// It is the caller's responsibility to mark the transcription as failed if it
// returns an error and job.id is set.
func (b *DiscordBot) runTranscription(ctx context.Context, job *transcriptionJob) error {
	req := job.request

	if err := b.jobs.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for a free worker: %w", err)
	}
	defer b.jobs.Release(1)

	id, err := b.store.StartTranscription(ctx, store.NewTranscription{
		UserID:    job.userID,
		GuildID:   job.interaction.GuildID,
		ChannelID: job.interaction.ChannelID,
		FileName:  req.Attachment.Filename,
		Format:    req.Format,
		Task:      req.Task,
		Language:  req.Language,
	})
	if err != nil {
		return fmt.Errorf("creating in db: %w", err)
	}
	job.id = id

	tempfile, err := b.downloadAttachmentToTemp(ctx, req.Attachment.URL, filepath.Ext(req.Attachment.Filename), b.limits.MaxInputFileSize)
	if errors.Is(err, utils.ErrIOLimitReached) {
		return DiscordExecutionError{
			Message:   fmt.Sprintf("File is too big, the limit is %s.", humanize.IBytes(uint64(b.limits.MaxInputFileSize))),
			Err:       err,
			UserError: true,
		}
	} else if err != nil {
		return DiscordExecutionError{
			Message: "Error downloading file.",
			Err:     fmt.Errorf("downloading attachment: %w", err),
		}
	}
	defer os.Remove(tempfile)

	if _, err := media.DetectAudioFile(tempfile); errors.Is(err, media.ErrUnsupportedAudio) {
		return DiscordExecutionError{
			Message:   "That file isn't a supported audio format.",
			Err:       err,
			UserError: true,
		}
	} else if err != nil {
		return fmt.Errorf("sniffing file type: %w", err)
	}

	start := time.Now()

	duration, err := b.ffmpeg.FFprobeDurationFromFile(ctx, tempfile)
	if errors.Is(err, media.ErrFFprobeDurationInvalid) {
		return DiscordExecutionError{
			Message:   "Couldn't find any audio in that file.",
			Err:       err,
			UserError: true,
		}
	} else if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if b.limits.MaxDuration > 0 && duration > b.limits.MaxDuration {
		return tooLongError(duration, b.limits.MaxDuration)
	}

	audio, err := b.ffmpeg.FFmpegNormalizeAudioFromFile(ctx, tempfile, b.limits.MaxOutputFileSize)
	if errors.Is(err, utils.ErrIOLimitReached) {
		return DiscordExecutionError{
			Message:   "Audio is too big after conversion.",
			Err:       err,
			UserError: true,
		}
	} else if err != nil {
		return fmt.Errorf("normalizing: %w", err)
	}

	output, err := b.asrAPI.Run(ctx, asr.Input{
		Audio:    audio,
		FileName: media.NormalizedFileName,
		Language: req.Language,
		Task:     req.Task,
	})
	if err != nil {
		return DiscordExecutionError{
			Message: "Error generating transcript.",
			Err:     fmt.Errorf("generating transcript: %w", err),
		}
	}

	rendered, err := transcript.Render(req.Format, output.Segments)
	if err != nil {
		return DiscordExecutionError{
			Message: "The model returned an invalid transcript.",
			Err:     fmt.Errorf("rendering transcript: %w", err),
		}
	}

	processingTime := time.Since(start).Seconds()

	err = b.store.CompleteTranscription(ctx, job.id, output, duration, processingTime)
	if err != nil {
		return fmt.Errorf("saving transcription: %w", err)
	}

	renderedResponse, err := b.executeMessageTemplate(ctx, "transcribe_result", MessageContext{
		TranscribeResult: buildTranscribeResult(req, output, rendered, job.id, duration, processingTime),
	})
	if err != nil {
		return fmt.Errorf("rendering message: %w", err)
	}

	_, err = b.discord.InteractionResponseEdit(job.interaction, &discordgo.WebhookEdit{
		Content:         &renderedResponse.Content,
		Embeds:          &renderedResponse.Embeds,
		Components:      &renderedResponse.Components,
		Files:           []*discordgo.File{transcriptFile(req.Format, rendered)},
		AllowedMentions: DefaultAllowedMentions,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("editing response: %w", err)
	}

	return nil
}

func buildTranscribeResult(req *transcribeRequest, output *asr.ASROutput, rendered string, id uuid.UUID, audioDuration, processingTime float64) *MessageContextTranscribeResult {
	preview, truncated := previewTranscript(rendered)

	return &MessageContextTranscribeResult{
		FileName:       req.Attachment.Filename,
		FormatLabel:    req.Format.Label(),
		CodeLanguage:   codeLanguage(req.Format),
		Preview:        preview,
		Truncated:      truncated,
		LanguageName:   languageName(output.Language),
		Translated:     output.Translated,
		SegmentCount:   len(output.Segments),
		AudioDuration:  formatSeconds(audioDuration),
		ProcessingTime: processingTime,
		ExportButtons:  exportButtons(req.Format, id),
	}
}

// previewTranscript cuts rendered down to fit in an embed code block.
func previewTranscript(rendered string) (string, bool) {
	truncated := len([]rune(rendered)) > maxPreviewLength
	preview := utils.Truncate(rendered, maxPreviewLength, "\n…")
	// a zero width space keeps the fence from being closed early
	preview = strings.ReplaceAll(preview, "```", "`\u200b``")
	return preview, truncated
}

func codeLanguage(f transcript.Format) string {
	switch f {
	case transcript.SubRip:
		return "srt"
	case transcript.JSON:
		return "json"
	default:
		return ""
	}
}

// exportButtons offers every format other than current.
func exportButtons(current transcript.Format, id uuid.UUID) []MessageContextButton {
	buttons := make([]MessageContextButton, 0, len(transcript.Formats)-1)
	for _, f := range transcript.Formats {
		if f == current {
			continue
		}
		buttons = append(buttons, MessageContextButton{
			Label:    f.Label(),
			CustomID: ComponentIDStringWithRef(ComponentSourceResult, exportAction(f), id.String()),
		})
	}
	return buttons
}

func transcriptFile(f transcript.Format, rendered string) *discordgo.File {
	return &discordgo.File{
		Name:        f.FileName(),
		ContentType: f.ContentType(),
		Reader:      bytes.NewReader([]byte(rendered)),
	}
}

// downloadAttachmentToTemp downloads url into a temp file with a size limit, returning the path.
//
// It is the caller's responsibility to clean up the temp file.
func (b *DiscordBot) downloadAttachmentToTemp(ctx context.Context, url, extension string, maxSize int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad http status: %s", resp.Status)
	}

	tempFile, err := os.CreateTemp("", "clementine-*"+extension)
	if err != nil {
		return "", fmt.Errorf("making temp file: %w", err)
	}

	_, err = utils.CopyLimit(tempFile, resp.Body, int64(maxSize))
	if err == nil {
		err = tempFile.Close()
	} else {
		tempFile.Close()
	}
	if err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("writing to the temp file: %w", err)
	}

	return tempFile.Name(), nil
}
