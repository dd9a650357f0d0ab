package decode

import "testing"

func TestSSDLabel(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{1, "person"},
		{3, "car"},
		{13, "stop sign"},
		{17, "cat"},
		{18, "dog"},
		{90, "toothbrush"},
		{12, "class12"},
		{0, "class0"},
		{91, "class91"},
	}

	for _, tt := range tests {
		if got := SSDLabel(tt.id); got != tt.want {
			t.Errorf("SSDLabel(%d) = %q, expected %q", tt.id, got, tt.want)
		}
	}
}

func TestYOLOLabel(t *testing.T) {
	if got := YOLOLabel(0); got != "person" {
		t.Errorf("Expected person, got %s", got)
	}
	if got := YOLOLabel(16); got != "dog" {
		t.Errorf("Expected dog, got %s", got)
	}
	if got := YOLOLabel(80); got != "class80" {
		t.Errorf("Expected class80, got %s", got)
	}
}

func TestSSD(t *testing.T) {
	values := []float32{
		0, 18, 0.9, 0.1, 0.2, 0.5, 0.6, // dog, kept
		0, 3, 0.4, 0.0, 0.0, 0.1, 0.1, // car, below threshold
		0, 1, 0.5, 0.0, 0.0, 0.1, 0.1, // person, equal to threshold
	}

	results := SSD(values, 100, 200, 0.5)
	if len(results) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(results))
	}

	r := results[0]
	if r.Label != "dog" || r.X != 10 || r.Y != 40 || r.Width != 40 || r.Height != 80 {
		t.Errorf("Unexpected detection %+v", r)
	}
}

func TestSSD_IgnoresTrailingPartialRow(t *testing.T) {
	values := []float32{0, 18, 0.9, 0.1, 0.2, 0.5, 0.6, 0, 1, 0.9}
	if got := len(SSD(values, 10, 10, 0.5)); got != 1 {
		t.Errorf("Expected 1 detection, got %d", got)
	}
}

func TestYOLO(t *testing.T) {
	cols := 5 + 80
	values := make([]float32, 2*cols)

	// row 0: a cat centred in the frame
	values[0], values[1], values[2], values[3], values[4] = 0.5, 0.5, 0.2, 0.4, 0.95
	values[5+15] = 0.8
	values[5+16] = 0.3

	// row 1: weak detection
	values[cols+5+2] = 0.1

	results := YOLO(values, cols, 100, 100, 0.5)
	if len(results) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(results))
	}

	r := results[0]
	if r.Label != "cat" || r.Width != 20 || r.Height != 40 || r.X != 40 || r.Y != 30 {
		t.Errorf("Unexpected detection %+v", r)
	}
}

func TestYOLO_TooFewColumns(t *testing.T) {
	if got := YOLO([]float32{1, 2, 3, 4, 5}, 5, 10, 10, 0); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}
