// Package transcript turns timed speech segments into the text formats
// offered for download: plain text, SubRip subtitles and JSON.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Segment is one timed span of recognized (or translated) speech. Times are
// in seconds from the start of the audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// FormatPlainText joins the trimmed text of each segment with newlines.
func FormatPlainText(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, strings.TrimSpace(seg.Text))
	}
	return strings.Join(lines, "\n")
}

// FormatSubtitle renders segments as SubRip blocks, numbered from 1 and each
// terminated by a blank line.
func FormatSubtitle(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTime(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTime(seg.End))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTime formats seconds as a SubRip timestamp, HH:MM:SS,mmm.
//
// The hour field is not clamped, so 100 hours or more produces a wider field.
// Milliseconds are truncated from the fractional part of seconds.
func FormatTime(seconds float64) string {
	h := int64(math.Floor(seconds / 3600))
	m := int64(math.Floor(math.Mod(seconds, 3600) / 60))
	s := int64(math.Floor(math.Mod(seconds, 60)))
	ms := int64(math.Floor((seconds - math.Floor(seconds)) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatJSON renders segments as an indented JSON array of
// {"start", "end", "text"} objects. Non-ASCII text is written as UTF-8.
//
// Encoding only fails for non-finite times, which Validate rejects.
func FormatJSON(segments []Segment) (string, error) {
	entries := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		entries = append(entries, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return "", fmt.Errorf("encoding segments: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Render validates segments and formats them in the requested format.
func Render(format Format, segments []Segment) (string, error) {
	if err := Validate(segments); err != nil {
		return "", err
	}

	switch format {
	case PlainText:
		return FormatPlainText(segments), nil
	case SubRip:
		return FormatSubtitle(segments), nil
	case JSON:
		return FormatJSON(segments)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}
