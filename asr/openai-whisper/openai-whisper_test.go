package openaiwhisper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/K3das/clementine/asr"
	"github.com/K3das/clementine/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verboseResponse = `{
	"task": "transcribe",
	"language": "arabic",
	"duration": 4.5,
	"text": "hello world",
	"segments": [
		{"id": 0, "start": 0.0, "end": 2.0, "text": " hello "},
		{"id": 1, "start": 2.0, "end": 4.5, "text": "world"}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIWhisperClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOpenAIWhisperClient(OpenAIWhisperClientOptions{
		APIKey:    "sk-test",
		ModelName: "whisper-1",
		BaseURL:   server.URL + "/v1/",
	})
	require.NoError(t, err)
	return client
}

func TestRunTranscription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "ar", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "audio.ogg", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("OggS"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(verboseResponse))
	})

	out, err := client.Run(context.Background(), asr.Input{
		Audio:    []byte("OggS"),
		FileName: "audio.ogg",
		Language: "ar",
		Task:     asr.TaskTranscribe,
	})
	require.NoError(t, err)

	assert.Equal(t, "openai_whisper-whisper-1", out.ModelName)
	assert.Equal(t, "arabic", out.Language)
	assert.Equal(t, 4.5, out.Duration)
	assert.False(t, out.Translated)
	assert.Equal(t, []transcript.Segment{
		{Start: 0, End: 2, Text: " hello "},
		{Start: 2, End: 4.5, Text: "world"},
	}, out.Segments)
}

func TestRunTranslation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/translations", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(verboseResponse))
	})

	out, err := client.Run(context.Background(), asr.Input{
		Audio: []byte("OggS"),
		Task:  asr.TaskTranslate,
	})
	require.NoError(t, err)
	assert.True(t, out.Translated)
	assert.Len(t, out.Segments, 2)
}

func TestRunUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid file format", "type": "invalid_request_error"}}`))
	})

	_, err := client.Run(context.Background(), asr.Input{Audio: []byte("x")})
	assert.ErrorContains(t, err, "invalid file format")
}

func TestNewRequiresKeyForDefaultURL(t *testing.T) {
	_, err := NewOpenAIWhisperClient(OpenAIWhisperClientOptions{})
	assert.Error(t, err)

	_, err = NewOpenAIWhisperClient(OpenAIWhisperClientOptions{BaseURL: "http://localhost:8000/v1"})
	assert.NoError(t, err)
}
