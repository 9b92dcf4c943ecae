package openaiwhisper

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/transcript"
	openai "github.com/sashabaranov/go-openai"
)

// used for the model name in the database
const apiPrefix = "openai_whisper-"

type OpenAIWhisperClient struct {
	client *openai.Client
	model  string
}

type OpenAIWhisperClientOptions struct {
	APIKey    string `env:"API_KEY"`
	ModelName string `env:"MODEL_NAME" envDefault:"whisper-1"`
	// BaseURL allows OpenAI-compatible servers, ie: a local faster-whisper server
	BaseURL string `env:"BASE_URL"`
}

func NewOpenAIWhisperClient(options OpenAIWhisperClientOptions) (*OpenAIWhisperClient, error) {
	if options.APIKey == "" && options.BaseURL == "" {
		return nil, fmt.Errorf("api key is required when using the default base url")
	}

	cfg := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(options.BaseURL, "/")
	}

	model := options.ModelName
	if model == "" {
		model = openai.Whisper1
	}

	return &OpenAIWhisperClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (o *OpenAIWhisperClient) Run(ctx context.Context, input asr.Input) (*asr.ASROutput, error) {
	if len(input.Audio) == 0 {
		return nil, asr.ErrEmptyAudio
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = "audio.ogg"
	}

	req := openai.AudioRequest{
		Model:    o.model,
		FilePath: fileName,
		Reader:   bytes.NewReader(input.Audio),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	var (
		resp openai.AudioResponse
		err  error
	)
	if input.Task == asr.TaskTranslate {
		resp, err = o.client.CreateTranslation(ctx, req)
	} else {
		req.Language = input.LanguageHint()
		resp, err = o.client.CreateTranscription(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}

	output := &asr.ASROutput{
		ModelName:  apiPrefix + o.model,
		Text:       strings.TrimSpace(resp.Text),
		Language:   resp.Language,
		Duration:   resp.Duration,
		Translated: input.Task == asr.TaskTranslate,
	}
	if output.Language == "" {
		output.Language = input.LanguageHint()
	}

	for _, s := range resp.Segments {
		output.Segments = append(output.Segments, transcript.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	if len(output.Segments) == 0 {
		output.Segments = asr.WholeTextSegment(output.Text, output.Duration)
	}

	return output, nil
}
