package messages

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderedMessage struct {
	Content string `json:"content"`
	Embeds  []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Color       int    `json:"color"`
		Fields      []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"fields"`
		Footer struct {
			Text string `json:"text"`
		} `json:"footer"`
	} `json:"embeds"`
	Components []struct {
		Type       int `json:"type"`
		Components []struct {
			Type     int    `json:"type"`
			Style    int    `json:"style"`
			Label    string `json:"label"`
			CustomID string `json:"custom_id"`
		} `json:"components"`
	} `json:"components"`
}

func render(t *testing.T, m *MessageProvider, name string, data any) renderedMessage {
	t.Helper()

	out, err := m.ExecuteMessage(name, data)
	require.NoError(t, err)

	var msg renderedMessage
	require.NoError(t, json.Unmarshal([]byte(out), &msg))
	return msg
}

func TestTranscribeResult(t *testing.T) {
	m, err := NewMessageProvider()
	require.NoError(t, err)

	msg := render(t, m, "transcribe_result", map[string]any{
		"transcribe_result": map[string]any{
			"file_name":       "voice.m4a",
			"format_label":    "SRT",
			"code_language":   "srt",
			"preview":         "1\n00:00:00,000 --> 00:00:02,000\nhello",
			"truncated":       true,
			"language_name":   "Arabic",
			"translated":      true,
			"segment_count":   2,
			"audio_duration":  "5s",
			"processing_time": 1.234,
			"export_buttons": []map[string]any{
				{"label": "TXT", "custom_id": "c:result:export_txt:abc"},
				{"label": "JSON", "custom_id": "c:result:export_json:abc"},
			},
		},
	})

	require.Len(t, msg.Embeds, 1)
	embed := msg.Embeds[0]
	assert.Equal(t, "voice.m4a", embed.Title)
	assert.Equal(t, "```srt\n1\n00:00:00,000 --> 00:00:02,000\nhello\n```", embed.Description)
	assert.Equal(t, "Audio 5s · processed in 1.2s", embed.Footer.Text)
	require.Len(t, embed.Fields, 5)
	assert.Equal(t, "Arabic", embed.Fields[1].Value)
	assert.Equal(t, "2", embed.Fields[2].Value)

	require.Len(t, msg.Components, 1)
	assert.Equal(t, 1, msg.Components[0].Type)
	require.Len(t, msg.Components[0].Components, 2)
	assert.Equal(t, "c:result:export_json:abc", msg.Components[0].Components[1].CustomID)
}

func TestTranscribeResultEmpty(t *testing.T) {
	m, err := NewMessageProvider()
	require.NoError(t, err)

	msg := render(t, m, "transcribe_result", map[string]any{
		"transcribe_result": map[string]any{
			"file_name":       "silence.wav",
			"format_label":    "TXT",
			"code_language":   "",
			"preview":         "",
			"truncated":       false,
			"language_name":   "Unknown",
			"translated":      false,
			"segment_count":   0,
			"audio_duration":  "1s",
			"processing_time": 0.5,
			"export_buttons":  []map[string]any{},
		},
	})

	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "*No speech detected.*", msg.Embeds[0].Description)
	assert.Len(t, msg.Embeds[0].Fields, 3)
	assert.Empty(t, msg.Components)
}

func TestUserSettings(t *testing.T) {
	m, err := NewMessageProvider()
	require.NoError(t, err)

	msg := render(t, m, "user_settings", map[string]any{
		"user_settings": map[string]any{
			"format_label": "JSON",
			"translate":    true,
			"format_buttons": []map[string]any{
				{"label": "TXT", "custom_id": "c:settings:format_txt", "selected": false},
				{"label": "JSON", "custom_id": "c:settings:format_json", "selected": true},
			},
			"translate_enable_component_id":  "c:settings:translate_enable",
			"translate_disable_component_id": "c:settings:translate_disable",
		},
	})

	require.Len(t, msg.Components, 2)
	assert.Equal(t, 2, msg.Components[0].Components[0].Style)
	assert.Equal(t, 1, msg.Components[0].Components[1].Style)
	assert.Equal(t, "c:settings:translate_disable", msg.Components[1].Components[0].CustomID)
	assert.Equal(t, "On", msg.Embeds[0].Fields[1].Value)
}

func TestErrorsAndSimpleMessages(t *testing.T) {
	m, err := NewMessageProvider()
	require.NoError(t, err)

	for _, name := range []string{"transcribe_error", "command_error", "interaction_error"} {
		t.Run(name, func(t *testing.T) {
			msg := render(t, m, name, map[string]any{
				name: map[string]any{"message": "File too big."},
			})
			require.Len(t, msg.Embeds, 1)
			assert.Equal(t, "❌ File too big.", msg.Embeds[0].Description)
			assert.Equal(t, 15548997, msg.Embeds[0].Color)
		})
	}

	msg := render(t, m, "transcribe_progress", map[string]any{
		"transcribe_progress": map[string]any{"file_name": "a.mp3", "translate": true},
	})
	assert.Equal(t, "🍊 Transcribing `a.mp3` and translating it to English...", msg.Embeds[0].Description)

	msg = render(t, m, "export_result", map[string]any{
		"export_result": map[string]any{"file_name": "a.mp3", "format_label": "JSON"},
	})
	assert.Equal(t, "`a.mp3` as JSON.", msg.Content)
}

func TestUnknownMessage(t *testing.T) {
	m, err := NewMessageProvider()
	require.NoError(t, err)

	_, err = m.ExecuteMessage("does_not_exist", map[string]any{})
	assert.Error(t, err)

	// the provider keeps working after a failed render
	msg := render(t, m, "command_error", map[string]any{
		"command_error": map[string]any{"message": "x"},
	})
	assert.Equal(t, "❌ x", msg.Embeds[0].Description)
}

func TestConcurrentExecution(t *testing.T) {
	m, err := NewMessageProvider()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ExecuteMessage("command_error", map[string]any{
				"command_error": map[string]any{"message": "x"},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
