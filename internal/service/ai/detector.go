package ai

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"noveltycam/internal/config"
	"noveltycam/internal/dto"
	"noveltycam/internal/logger"
	"noveltycam/internal/service/ai/decode"
	"noveltycam/internal/service/novelty"
	"noveltycam/internal/service/video"
)

// ErrDetection marks a failure of the model on a single frame.
var ErrDetection = errors.New("object detection failed")

const (
	FormatSSD  = "ssd"
	FormatYOLO = "yolo"
)

type DetectorService struct {
	net        gocv.Net
	format     string
	threshold  float64
	outLayers  []string
	modelPath  string
	configPath string
	logger     *logger.Logger
}

// NewDetectorService loads the DNN network described by the configuration.
func NewDetectorService(cfg *config.Config, logger *logger.Logger) (*DetectorService, error) {
	service := &DetectorService{
		format:     cfg.ModelFormat,
		threshold:  cfg.ConfidenceThreshold,
		modelPath:  cfg.ModelPath,
		configPath: cfg.ModelConfigPath,
		logger:     logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, fmt.Errorf("could not initialize detection network: %w", err)
	}
	return service, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}
	if s.configPath != "" {
		if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.configPath)
		}
	}

	net := gocv.ReadNet(s.modelPath, s.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	if s.format == FormatYOLO {
		for _, id := range net.GetUnconnectedOutLayers() {
			layer := net.GetLayer(id)
			s.outLayers = append(s.outLayers, layer.GetName())
			layer.Close()
		}
	}

	s.net = net
	s.logger.Info("🤖 Detection network initialized (%s, threshold %.2f)", s.format, s.threshold)
	return nil
}

// Detect runs the model on a frame, stores the raw detections on the frame
// for later annotation and returns the set of detected labels.
func (s *DetectorService) Detect(frame *video.Frame) (novelty.LabelSet, error) {
	detections, err := s.DetectObjects(frame.Mat)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrDetection, frame.Seq, err)
	}
	frame.Detections = append(frame.Detections[:0], detections...)

	labels := novelty.NewLabelSet()
	for _, d := range detections {
		labels.Add(d.Label)
	}
	if !labels.IsEmpty() {
		s.logger.Debug("Frame %d: detected %s", frame.Seq, labels)
	}
	return labels, nil
}

// DetectObjects runs the DNN on the image and returns the detections above the confidence threshold.
func (s *DetectorService) DetectObjects(mat gocv.Mat) ([]dto.DetectionResult, error) {
	if s.net.Empty() {
		return nil, fmt.Errorf("detection network not initialized")
	}
	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	switch s.format {
	case FormatYOLO:
		return s.detectYOLO(mat)
	default:
		return s.detectSSD(mat)
	}
}

func (s *DetectorService) detectSSD(mat gocv.Mat) ([]dto.DetectionResult, error) {
	//Create blob with parameters that fit ssd coco net input
	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	values, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %v", err)
	}
	return decode.SSD(values, mat.Cols(), mat.Rows(), s.threshold), nil
}

func (s *DetectorService) detectYOLO(mat gocv.Mat) ([]dto.DetectionResult, error) {
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(416, 416), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	outputs := s.net.ForwardLayers(s.outLayers)
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()

	var results []dto.DetectionResult
	for _, output := range outputs {
		values, err := output.DataPtrFloat32()
		if err != nil {
			return nil, fmt.Errorf("failed to read network output: %v", err)
		}
		results = append(results, decode.YOLO(values, output.Cols(), mat.Cols(), mat.Rows(), s.threshold)...)
	}
	return results, nil
}

// DrawRectangles draws detection results onto mat.
func DrawRectangles(mat *gocv.Mat, detections []dto.DetectionResult) error {
	red := color.RGBA{R: 255, G: 0, B: 0, A: 0}

	for _, detection := range detections {
		rect := image.Rect(detection.X, detection.Y, detection.X+detection.Width, detection.Y+detection.Height)
		if err := gocv.Rectangle(mat, rect, red, 2); err != nil {
			return fmt.Errorf("failed to draw rectangle: %v", err)
		}

		label := fmt.Sprintf("%s (%.2f)", detection.Label, detection.Confidence)
		pt := image.Pt(detection.X, detection.Y-5)
		if err := gocv.PutText(mat, label, pt, gocv.FontHersheySimplex, 0.5, red, 1); err != nil {
			return fmt.Errorf("failed to draw text: %v", err)
		}
	}
	return nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}
