package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"noveltycam/internal/config"
	"noveltycam/internal/logger"
	"noveltycam/internal/service/ai"
	"noveltycam/internal/service/video"
)

// ImageStore writes alert frames to disk as JPEG files.
type ImageStore struct {
	imagesDir string
	annotate  bool
	logger    *logger.Logger
}

// NewImageStore creates an ImageStore for the configured image directory.
func NewImageStore(cfg *config.Config, logger *logger.Logger) *ImageStore {
	return &ImageStore{
		imagesDir: cfg.ImageDirectory,
		annotate:  cfg.AnnotateAlerts,
		logger:    logger,
	}
}

// Save encodes the frame to imagesDir/name and returns the written path.
func (s *ImageStore) Save(frame *video.Frame, name string) (string, error) {
	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		return "", fmt.Errorf("error creating directory: %w", err)
	}

	fullpath := filepath.Join(s.imagesDir, filepath.Base(name))

	img := frame.Mat
	if s.annotate && len(frame.Detections) > 0 {
		annotated := frame.Mat.Clone()
		defer annotated.Close()

		if err := ai.DrawRectangles(&annotated, frame.Detections); err != nil {
			s.logger.Warning("Failed to draw detections on %s, saving raw frame: %v", name, err)
		} else {
			img = annotated
		}
	}

	if ok := gocv.IMWrite(fullpath, img); !ok {
		return "", fmt.Errorf("error saving image %s", fullpath)
	}
	return fullpath, nil
}
