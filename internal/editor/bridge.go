package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/timecode"
)

const BridgeName = "bridge"

// JSON printed by the bridge helper on stdout
type bridgeResponse struct {
	Error      string  `json:"error"`
	TimelineID string  `json:"timeline_id"`
	Entries    []Entry `json:"entries"`
	FPS        float64 `json:"fps"`
}

// runs argv and returns its stdout
type runner func(ctx context.Context, argv []string) ([]byte, error)

// BridgeClient drives an editor through a helper program that speaks the
// editor's scripting API. Each call runs
//
//	<command> <verb> [args...]
//
// and reads one JSON object from stdout. Verbs: ensure-ready, timeline-id,
// timeline-entries <id>, frame-rate <media>, import-media <media>,
// import-clip <media> <start-frame> <end-frame|-1>.
type BridgeClient struct {
	argv    []string
	timeout time.Duration
	logger  *logging.Logger
	run     runner
}

func NewBridgeClient(opts Options) (Client, error) {
	argv, err := shlex.Split(opts.BridgeCommand)
	if err != nil {
		return nil, fmt.Errorf("invalid bridge command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("bridge command is required for the %s editor", BridgeName)
	}

	return &BridgeClient{
		argv:    argv,
		timeout: opts.CallTimeout,
		logger:  logging.OrNop(opts.Logger),
		run:     execRunner,
	}, nil
}

func execRunner(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func (c *BridgeClient) invoke(ctx context.Context, verb string, args ...string) (*bridgeResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	argv := append(append(append([]string(nil), c.argv...), verb), args...)
	c.logger.Debugw("Calling editor bridge", "verb", verb, "args", args)

	out, err := c.run(ctx, argv)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s", ErrUnavailable, verb, c.timeout)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, verb, err)
	}

	var resp bridgeResponse
	if len(bytes.TrimSpace(out)) > 0 {
		if err := json.Unmarshal(out, &resp); err != nil {
			return nil, fmt.Errorf("%w: malformed %s response: %v", ErrUnavailable, verb, err)
		}
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Error)
	}
	return &resp, nil
}

func (c *BridgeClient) EnsureReady(ctx context.Context) error {
	_, err := c.invoke(ctx, "ensure-ready")
	return err
}

func (c *BridgeClient) ActiveTimelineID(ctx context.Context) (string, error) {
	resp, err := c.invoke(ctx, "timeline-id")
	if err != nil {
		return "", err
	}
	return resp.TimelineID, nil
}

func (c *BridgeClient) TimelineEntries(ctx context.Context, timelineID string) ([]Entry, error) {
	resp, err := c.invoke(ctx, "timeline-entries", timelineID)
	if err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *BridgeClient) ProbeFrameRate(ctx context.Context, mediaPath string) (float64, error) {
	resp, err := c.invoke(ctx, "frame-rate", mediaPath)
	if err != nil {
		return 0, err
	}
	if resp.FPS <= 0 {
		return 0, fmt.Errorf("%w: no frame rate reported for %s", ErrUnavailable, mediaPath)
	}
	return resp.FPS, nil
}

func (c *BridgeClient) ImportMedia(ctx context.Context, mediaPath string) error {
	_, err := c.invoke(ctx, "import-media", mediaPath)
	return err
}

func (c *BridgeClient) ImportClip(ctx context.Context, mediaPath string, r timecode.Range) error {
	end := r.EndFrame
	if r.Open() {
		end = -1
	}
	_, err := c.invoke(ctx, "import-clip",
		mediaPath,
		strconv.Itoa(r.StartFrame),
		strconv.Itoa(end),
	)
	return err
}
