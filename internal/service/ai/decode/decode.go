package decode

import (
	"noveltycam/internal/dto"
)

// SSDRowSize is the width of one SSD detection row:
// [batch_id, class_id, confidence, x1, y1, x2, y2], coordinates normalized.
const SSDRowSize = 7

// SSD decodes a flattened SSD output for a frame of the given size and keeps
// detections whose confidence is above threshold.
func SSD(values []float32, frameWidth, frameHeight int, threshold float64) []dto.DetectionResult {
	var results []dto.DetectionResult

	w := float32(frameWidth)
	h := float32(frameHeight)
	for i := 0; i+SSDRowSize <= len(values); i += SSDRowSize {
		row := values[i : i+SSDRowSize]
		confidence := float64(row[2])
		if confidence <= threshold {
			continue
		}

		x := int(row[3] * w)
		y := int(row[4] * h)
		results = append(results, dto.DetectionResult{
			Label:      SSDLabel(int(row[1])),
			Confidence: confidence,
			X:          x,
			Y:          y,
			Width:      int(row[5]*w) - x,
			Height:     int(row[6]*h) - y,
		})
	}
	return results
}

// YOLO decodes one Darknet output layer. Each row holds
// [cx, cy, w, h, objectness, class scores...] with normalized coordinates.
// The best class score is the detection confidence.
func YOLO(values []float32, cols int, frameWidth, frameHeight int, threshold float64) []dto.DetectionResult {
	if cols <= 5 {
		return nil
	}

	var results []dto.DetectionResult

	w := float32(frameWidth)
	h := float32(frameHeight)
	for i := 0; i+cols <= len(values); i += cols {
		row := values[i : i+cols]
		scores := row[5:]

		classID := 0
		best := scores[0]
		for c, score := range scores[1:] {
			if score > best {
				best = score
				classID = c + 1
			}
		}

		confidence := float64(best)
		if confidence <= threshold {
			continue
		}

		width := int(row[2] * w)
		height := int(row[3] * h)
		results = append(results, dto.DetectionResult{
			Label:      YOLOLabel(classID),
			Confidence: confidence,
			X:          int(row[0]*w) - width/2,
			Y:          int(row[1]*h) - height/2,
			Width:      width,
			Height:     height,
		})
	}
	return results
}
