package workerswhisper

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/transcript"
)

// used for the model name in the database
const apiPrefix = "workers_whisper-"

const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

type CloudflareResponse[T any] struct {
	Result   *T    `json:"result"`
	Success  bool  `json:"success"`
	Errors   []any `json:"errors"`
	Messages []any `json:"messages"`
}

type SpeechRecognitionRequest struct {
	// Base64 encoded audio
	Audio    string `json:"audio"`
	Task     string `json:"task,omitempty"`
	Language string `json:"language,omitempty"`
}

type SpeechRecognitionResponse struct {
	TranscriptionInfo *TranscriptionInfo `json:"transcription_info"`
	// The transcription
	Text      string    `json:"text"`
	WordCount float64   `json:"word_count"`
	Segments  []Segment `json:"segments"`
	Vtt       string    `json:"vtt"`
}

type TranscriptionInfo struct {
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
	Duration            float64 `json:"duration"`
	DurationAfterVAD    float64 `json:"duration_after_vad"`
}

type Segment struct {
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
}

type WorkersWhisperClient struct {
	account string
	token   string
	model   string
	baseURL string

	http *http.Client
}

type WorkersWhisperClientOptions struct {
	Account   string `env:"CF_ACCOUNT_ID"`
	Token     string `env:"CF_TOKEN"`
	ModelName string `env:"CF_MODEL_NAME" envDefault:"@cf/openai/whisper-large-v3-turbo"`
	BaseURL   string `env:"CF_BASE_URL" envDefault:"https://api.cloudflare.com/client/v4"`
}

func NewWorkersWhisperClient(options WorkersWhisperClientOptions) (*WorkersWhisperClient, error) {
	if options.Account == "" || options.Token == "" {
		return nil, fmt.Errorf("cloudflare account id and token are required")
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &WorkersWhisperClient{
		account: options.Account,
		token:   options.Token,
		model:   options.ModelName,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    http.DefaultClient,
	}, nil
}

// WithHTTPClient replaces the client used for API requests.
func (w *WorkersWhisperClient) WithHTTPClient(client *http.Client) *WorkersWhisperClient {
	w.http = client
	return w
}

func (w *WorkersWhisperClient) runCF(ctx context.Context, body SpeechRecognitionRequest) (*CloudflareResponse[SpeechRecognitionResponse], error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/accounts/%s/ai/run/%s", w.baseURL, w.account, w.model), bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-ok http response: [%d] %s", resp.StatusCode, resp.Status)
	}

	var cfResp *CloudflareResponse[SpeechRecognitionResponse]
	err = json.NewDecoder(resp.Body).Decode(&cfResp)
	if err != nil {
		return nil, fmt.Errorf("decoding response json: %w", err)
	}

	return cfResp, nil
}

func (w *WorkersWhisperClient) Run(ctx context.Context, input asr.Input) (*asr.ASROutput, error) {
	if len(input.Audio) == 0 {
		return nil, asr.ErrEmptyAudio
	}

	resp, err := w.runCF(ctx, SpeechRecognitionRequest{
		Audio:    base64.StdEncoding.EncodeToString(input.Audio),
		Task:     string(input.Task),
		Language: input.LanguageHint(),
	})
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("request unsuccessful: %v", resp.Errors)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("nil result")
	}

	output := &asr.ASROutput{
		ModelName:  apiPrefix + w.model,
		Text:       strings.TrimSpace(resp.Result.Text),
		Language:   input.LanguageHint(),
		Translated: input.Task == asr.TaskTranslate,
	}
	if info := resp.Result.TranscriptionInfo; info != nil {
		output.Duration = info.Duration
		if info.Language != "" {
			output.Language = info.Language
		}
	}

	for _, s := range resp.Result.Segments {
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
