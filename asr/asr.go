package asr

import (
	"context"
	"fmt"

	"github.com/K3das/clementine/transcript"
)

// Task selects between transcribing speech as spoken and translating it to
// English.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// AutoLanguage asks the model to detect the spoken language.
const AutoLanguage = "auto"

var ErrEmptyAudio = fmt.Errorf("no audio data")

type SpeechRecognitionAPI interface {
	Run(ctx context.Context, input Input) (*ASROutput, error)
}

type Input struct {
	Audio []byte
	// FileName is a hint for the container format, ie: "audio.ogg"
	FileName string
	// Language is an ISO-639-1 code, or AutoLanguage/"" to detect it
	Language string
	Task     Task
}

// LanguageHint returns the language to send upstream, or "" to let the model
// detect it.
func (i Input) LanguageHint() string {
	if i.Language == AutoLanguage {
		return ""
	}
	return i.Language
}

type ASROutput struct {
	Segments  []transcript.Segment
	Text      string
	Language  string
	ModelName string
	// Duration of the processed audio in seconds, 0 if unknown
	Duration   float64
	Translated bool
}

// WholeTextSegment is used when a model returns text without timing
// information.
func WholeTextSegment(text string, duration float64) []transcript.Segment {
	if text == "" {
		return nil
	}
	return []transcript.Segment{{Start: 0, End: duration, Text: text}}
}
