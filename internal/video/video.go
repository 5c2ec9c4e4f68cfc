package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/momentnav/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// copies [start, start+duration) of videoPath into outputPath
	ExportClip(ctx context.Context, videoPath, outputPath string, start, duration time.Duration) error
}

// default implementation using ffmpeg
type DefaultProcessor struct{}

func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(videoPath, out.Bytes())
}

func parseProbe(videoPath string, data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: videoPath}
	if probe.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration: %w", err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	videoFound := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			if fps, err := ParseFrameRate(s.RFrameRate); err == nil {
				info.FrameRate = fps
			} else if fps, err := ParseFrameRate(s.AvgFrameRate); err == nil {
				info.FrameRate = fps
			}
		}
	}
	return info, nil
}

// ParseFrameRate reads ffprobe's rational rates ("24000/1001") and plain
// decimals ("25").
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, isRational := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if isRational {
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("invalid frame rate %q: zero denominator", s)
		}
		n /= d
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	return n, nil
}

// frame rate of the first video stream
func (p *DefaultProcessor) ProbeFrameRate(ctx context.Context, videoPath string) (float64, error) {
	info, err := p.GetInfo(ctx, videoPath)
	if err != nil {
		return 0, err
	}
	if info.FrameRate <= 0 {
		return 0, fmt.Errorf("no video stream with a frame rate in %s", videoPath)
	}
	return info.FrameRate, nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func clipStream(videoPath, outputPath string, start, duration time.Duration) *ffmpeg.Stream {
	input := ffmpeg.KwArgs{"ss": seconds(start)}
	output := ffmpeg.KwArgs{"c": "copy"}
	if duration > 0 {
		output["t"] = seconds(duration)
	}
	return ffmpeg.Input(videoPath, input).
		Output(outputPath, output).
		OverWriteOutput()
}

// copies a range of the source without re-encoding; duration <= 0 runs to
// the end of the file
func (p *DefaultProcessor) ExportClip(
	ctx context.Context,
	videoPath, outputPath string,
	start, duration time.Duration,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	cmd := clipStream(videoPath, outputPath, start, duration).
		SetFfmpegPath(ffmpegPath).
		Compile()

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg clip export failed: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg clip export failed: %w: %s", err, lastLine(stderr.String()))
		}
		return nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		_ = os.Remove(outputPath)
		return fmt.Errorf("clip export cancelled: %w", ctx.Err())
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
