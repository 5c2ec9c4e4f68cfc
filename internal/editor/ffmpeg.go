package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpegbin "github.com/mgpai22/momentnav/internal/ffmpeg"
	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/timecode"
	"github.com/mgpai22/momentnav/internal/video"
)

const FFmpegName = "ffmpeg"

// FFmpegClient stands in for an editor when none is scriptable: clips are
// cut into ExportDir with ffmpeg instead of being placed on a timeline. It has
// no timeline to read.
type FFmpegClient struct {
	exportDir string
	processor video.Processor
	logger    *logging.Logger
}

func NewFFmpegClient(opts Options) (Client, error) {
	dir := opts.ExportDir
	if dir == "" {
		dir = "clips"
	}
	return &FFmpegClient{
		exportDir: dir,
		processor: video.NewProcessor(),
		logger:    logging.OrNop(opts.Logger),
	}, nil
}

func (c *FFmpegClient) EnsureReady(ctx context.Context) error {
	if _, err := ffmpegbin.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.MkdirAll(c.exportDir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create export directory: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *FFmpegClient) ActiveTimelineID(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%w: %s has no timeline", ErrUnsupported, FFmpegName)
}

func (c *FFmpegClient) TimelineEntries(ctx context.Context, timelineID string) ([]Entry, error) {
	return nil, fmt.Errorf("%w: %s has no timeline", ErrUnsupported, FFmpegName)
}

func (c *FFmpegClient) ProbeFrameRate(ctx context.Context, mediaPath string) (float64, error) {
	info, err := c.processor.GetInfo(ctx, mediaPath)
	if err != nil {
		return 0, err
	}
	if info.FrameRate <= 0 {
		return 0, fmt.Errorf("no video stream with a frame rate in %s", mediaPath)
	}
	return info.FrameRate, nil
}

func (c *FFmpegClient) ImportMedia(ctx context.Context, mediaPath string) error {
	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("media not accessible: %w", err)
	}
	return nil
}

func (c *FFmpegClient) ImportClip(ctx context.Context, mediaPath string, r timecode.Range) error {
	fps, err := c.ProbeFrameRate(ctx, mediaPath)
	if err != nil {
		return err
	}

	start := framesToDuration(r.StartFrame, fps)
	var length time.Duration
	if !r.Open() {
		length = framesToDuration(r.EndFrame-r.StartFrame, fps)
	}

	out := ClipPath(c.exportDir, mediaPath, r)
	if err := c.processor.ExportClip(ctx, mediaPath, out, start, length); err != nil {
		return err
	}

	c.logger.Infow("Exported clip", "media", mediaPath, "output", out,
		"start_frame", r.StartFrame, "end_frame", r.EndFrame)
	return nil
}

func framesToDuration(frames int, fps float64) time.Duration {
	return time.Duration(float64(frames) / fps * float64(time.Second))
}

// ClipPath names the exported file after the source and its frame range
func ClipPath(dir, mediaPath string, r timecode.Range) string {
	ext := filepath.Ext(mediaPath)
	base := strings.TrimSuffix(filepath.Base(mediaPath), ext)
	end := "end"
	if !r.Open() {
		end = fmt.Sprint(r.EndFrame)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d-%s%s", base, r.StartFrame, end, ext))
}
