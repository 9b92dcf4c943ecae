package transcript

import (
	"fmt"
	"strings"
)

// Format is an output encoding for a transcript.
type Format string

const (
	PlainText Format = "txt"
	SubRip    Format = "srt"
	JSON      Format = "json"
)

var ErrUnknownFormat = fmt.Errorf("unknown transcript format")

// Formats lists every supported format in display order.
var Formats = []Format{PlainText, SubRip, JSON}

// ParseFormat accepts a format name case-insensitively, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case PlainText, SubRip, JSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension is the file extension used when offering the output as a download.
func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case SubRip:
		return "application/x-subrip; charset=utf-8"
	case JSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Label is the upper-case name shown to users, ie: "SRT".
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

// FileName is the download name for a transcript in this format.
func (f Format) FileName() string {
	return "transcript" + f.Extension()
}
