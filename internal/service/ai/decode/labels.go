// Package decode turns raw DNN output tensors into detection results.
// It has no OpenCV dependency so it can be tested on plain slices.
package decode

import "fmt"

// cocoNames are the 80 COCO classes in the order Darknet/YOLO models use.
var cocoNames = [80]string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
}

// ssdNames maps the 90-id TensorFlow SSD class ids to names. Ids that the
// COCO 2017 release left unused stay empty.
var ssdNames = func() [91]string {
	unused := map[int]bool{12: true, 26: true, 29: true, 30: true, 45: true, 66: true, 68: true, 69: true, 71: true, 83: true}

	var names [91]string
	next := 0
	for id := 1; id <= 90; id++ {
		if unused[id] {
			continue
		}
		names[id] = cocoNames[next]
		next++
	}
	return names
}()

// YOLOLabel maps a zero-based Darknet class index to its label.
func YOLOLabel(classID int) string {
	if classID >= 0 && classID < len(cocoNames) {
		return cocoNames[classID]
	}
	return fmt.Sprintf("class%d", classID)
}

// SSDLabel maps a one-based TensorFlow SSD class id to its label.
func SSDLabel(classID int) string {
	if classID > 0 && classID < len(ssdNames) && ssdNames[classID] != "" {
		return ssdNames[classID]
	}
	return fmt.Sprintf("class%d", classID)
}
