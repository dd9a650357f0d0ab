package video

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"gocv.io/x/gocv"

	"noveltycam/internal/config"
	"noveltycam/internal/dto"
	"noveltycam/internal/logger"
)

// Frame is one decoded video frame. The Source reuses it: it stays valid
// only until the next call to Next.
type Frame struct {
	Seq        int
	PosMsec    float64
	Mat        gocv.Mat
	Detections []dto.DetectionResult
}

// Source reads frames from a video file, RTSP or HTTP stream, or a local camera index.
type Source struct {
	capture *gocv.VideoCapture
	frame   Frame
	stride  int
	read    int
	name    string
	logger  *logger.Logger
}

// Open starts capturing from cfg.VideoSource.
func Open(cfg *config.Config, logger *logger.Logger) (*Source, error) {
	var device interface{} = cfg.VideoSource
	if index, err := strconv.Atoi(cfg.VideoSource); err == nil {
		device = index
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("unable to open video %s: %w", cfg.VideoSource, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("unable to open video %s", cfg.VideoSource)
	}

	stride := cfg.FrameStride
	if stride < 1 {
		stride = 1
	}

	logger.Info("📹 Video source opened: %s (%.0fx%.0f @ %.1f fps, processing every %d frame(s))",
		cfg.VideoSource,
		capture.Get(gocv.VideoCaptureFrameWidth),
		capture.Get(gocv.VideoCaptureFrameHeight),
		capture.Get(gocv.VideoCaptureFPS),
		stride)

	return &Source{
		capture: capture,
		frame:   Frame{Mat: gocv.NewMat()},
		stride:  stride,
		name:    cfg.VideoSource,
		logger:  logger,
	}, nil
}

// Next returns the next frame to process, dropping stride-1 frames in
// between. It returns io.EOF when the stream has no more frames.
func (s *Source) Next(ctx context.Context) (*Frame, error) {
	for skipped := 0; ; skipped++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.capture.IsOpened() {
			return nil, fmt.Errorf("capture %s is closed", s.name)
		}
		if ok := s.capture.Read(&s.frame.Mat); !ok || s.frame.Mat.Empty() {
			return nil, io.EOF
		}
		s.read++

		if skipped == s.stride-1 {
			break
		}
	}

	s.frame.Seq = s.read
	s.frame.PosMsec = s.capture.Get(gocv.VideoCapturePosMsec)
	s.frame.Detections = s.frame.Detections[:0]
	return &s.frame, nil
}

// Close releases the capture device and the frame buffer.
func (s *Source) Close() error {
	if err := s.frame.Mat.Close(); err != nil {
		s.logger.Warning("Failed to release frame buffer: %v", err)
	}
	return s.capture.Close()
}
