package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

var ErrFFprobeDurationInvalid = fmt.Errorf("got no packets from ffprobe, likely a bad file")

type Packet struct {
	CodecType          string  `json:"codec_type"`
	StreamIndex        int     `json:"stream_index"`
	PtsTime            string  `json:"pts_time"`
	DurationTime       string  `json:"duration_time"`
	Size               string  `json:"size"`
	Flags              string  `json:"flags"`
	ParsedPtsTime      float64 `json:"-"`
	ParsedDurationTime float64 `json:"-"`
}

type FFprobePacketsOutput struct {
	Packets []Packet `json:"packets"`
}

func (f *FFmpeg) ffprobeGetPacketsFromFile(ctx context.Context, filePath string) ([]Packet, error) {
	cmd := exec.CommandContext(ctx,
		f.ffprobeBinary,
		"-i", filePath,
		"-v", "error",
		"-print_format", "json",
		"-select_streams", "a:0",
		"-show_entries", "packet=codec_type,stream_index,pts_time,duration_time,size,flags",
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running ffprobe: %w", err)
	}

	return parsePackets(output)
}

func parsePackets(output []byte) ([]Packet, error) {
	var response FFprobePacketsOutput
	err := json.Unmarshal(output, &response)
	if err != nil {
		return nil, fmt.Errorf("parsing ffprobe json response: %w", err)
	}

	for i := range response.Packets {
		packet := &response.Packets[i]

		packet.ParsedPtsTime, err = parseTime(packet.PtsTime)
		if err != nil {
			return nil, fmt.Errorf("parsing PtsTime: %w", err)
		}
		packet.ParsedDurationTime, err = parseTime(packet.DurationTime)
		if err != nil {
			return nil, fmt.Errorf("parsing DurationTime: %w", err)
		}
	}

	return response.Packets, nil
}

// parseTime treats missing timestamps ("" or "N/A", common on the last
// packet of some containers) as zero.
func parseTime(s string) (float64, error) {
	if s == "" || s == "N/A" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// durationFromPackets is `max pts time + duration time`.
func durationFromPackets(packets []Packet) (float64, error) {
	if len(packets) == 0 {
		return 0, ErrFFprobeDurationInvalid
	}

	maxPacket := packets[0]
	for _, packet := range packets {
		if packet.ParsedPtsTime > maxPacket.ParsedPtsTime {
			maxPacket = packet
		}
	}

	return maxPacket.ParsedPtsTime + maxPacket.ParsedDurationTime, nil
}

// FFprobeDurationFromFile gets the duration of the input file using ffprobe
//
// Parses packet metadata to determine length: `max pts time + duration time`.
// Returns ErrFFprobeDurationInvalid if no packets.
//
// This uses packet metadata because some containers don't really include duration
// metadata (like the MediaRecorder API's output), and it's more accurate to
// what is processed by the model.
func (f *FFmpeg) FFprobeDurationFromFile(ctx context.Context, filePath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.commandTimeout)
	defer cancel()

	packets, err := f.ffprobeGetPacketsFromFile(ctx, filePath)
	if err != nil {
		return 0, fmt.Errorf("getting packets: %w", err)
	}

	return durationFromPackets(packets)
}
