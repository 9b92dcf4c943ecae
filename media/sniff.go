package media

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedAudio = errors.New("unsupported audio format")

// SupportedAudioTypes are the accepted upload types: mp3, wav, m4a, flac and
// anything in an ogg container.
var SupportedAudioTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/x-m4a",
	"audio/mp4",
	"audio/flac",
	"audio/ogg",
	"application/ogg",
}

// DetectAudio sniffs data and returns its type if it's a supported audio
// format. Parent types are checked too, so ie: ogg/opus matches
// application/ogg.
func DetectAudio(data []byte) (*mimetype.MIME, error) {
	return checkAudio(mimetype.Detect(data))
}

func DetectAudioFile(filePath string) (*mimetype.MIME, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("detecting file type: %w", err)
	}
	return checkAudio(mtype)
}

func checkAudio(mtype *mimetype.MIME) (*mimetype.MIME, error) {
	for m := mtype; m != nil; m = m.Parent() {
		for _, supported := range SupportedAudioTypes {
			if m.Is(supported) {
				return mtype, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, mtype.String())
}
