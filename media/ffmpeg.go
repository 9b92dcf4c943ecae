package media

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/K3das/clementine/utils"
)

// NormalizedFileName is the file name hint for FFmpegNormalizeAudioFromFile output.
const NormalizedFileName = "audio.ogg"

// FFmpegNormalizeAudioFromFile downmixes the input to mono, resamples it to
// 16kHz (what whisper models consume) and encodes it as opus in an ogg
// container, returning at most maxSize bytes.
func (f *FFmpeg) FFmpegNormalizeAudioFromFile(ctx context.Context, filePath string, maxSize int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		f.ffmpegBinary,
		"-nostdin",
		"-v", "error",
		"-i", filePath,
		"-vn",
		"-c:a", "libopus",
		"-b:a", "32k",
		"-ar:a", "16000",
		"-ac:a", "1",
		"-f", "ogg",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	output, err := utils.ReadAllLimit(stdout, maxSize)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("reading output: %w", err)
	}

	err = cmd.Wait()
	if err != nil {
		return nil, fmt.Errorf("running ffmpeg: %w", err)
	}

	return output, nil
}
