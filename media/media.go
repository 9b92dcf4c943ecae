package media

import (
	"fmt"
	"os/exec"
	"time"
)

const DefaultFFmpegBinary = "ffmpeg"
const DefaultFFprobeBinary = "ffprobe"

const DefaultCommandTimeout = time.Minute * 2

type FFmpegOptions func(*FFmpeg)

type FFmpeg struct {
	ffmpegBinary   string
	ffprobeBinary  string
	commandTimeout time.Duration
}

func WithFFmpegBinary(ffmpegBinary string) FFmpegOptions {
	return func(f *FFmpeg) {
		if ffmpegBinary != "" {
			f.ffmpegBinary = ffmpegBinary
		}
	}
}

func WithFFprobeBinary(ffprobeBinary string) FFmpegOptions {
	return func(f *FFmpeg) {
		if ffprobeBinary != "" {
			f.ffprobeBinary = ffprobeBinary
		}
	}
}

func WithCommandTimeout(timeout time.Duration) FFmpegOptions {
	return func(f *FFmpeg) {
		if timeout > 0 {
			f.commandTimeout = timeout
		}
	}
}

func NewFFmpeg(options ...FFmpegOptions) *FFmpeg {
	ffmpeg := &FFmpeg{
		ffmpegBinary:   DefaultFFmpegBinary,
		ffprobeBinary:  DefaultFFprobeBinary,
		commandTimeout: DefaultCommandTimeout,
	}

	for _, option := range options {
		option(ffmpeg)
	}

	return ffmpeg
}

// CheckBinaries makes sure both ffmpeg and ffprobe can be found, so a missing
// install fails at startup instead of on the first upload.
func (f *FFmpeg) CheckBinaries() error {
	for _, binary := range []string{f.ffmpegBinary, f.ffprobeBinary} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("finding %s: %w", binary, err)
		}
	}
	return nil
}
