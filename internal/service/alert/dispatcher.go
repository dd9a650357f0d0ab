package alert

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"noveltycam/internal/logger"
	"noveltycam/internal/model"
	"noveltycam/internal/service/novelty"
)

var (
	// ErrPersistence marks a failed image save or log append.
	ErrPersistence = errors.New("alert persistence failed")
	// ErrDelivery marks a failed notification. The alert itself stands.
	ErrDelivery = errors.New("alert delivery failed")
	// ErrEmptyAlert is returned when asked to dispatch without novel labels.
	ErrEmptyAlert = errors.New("alert has no novel labels")
)

// ImageStore persists the frame that triggered an alert and returns a reference to it.
type ImageStore[F any] interface {
	Save(frame F, name string) (string, error)
}

// Log is the append-only durable alert log.
type Log interface {
	Append(ctx context.Context, alert *model.Alert) error
}

// Notifier delivers an alert to an operator.
type Notifier interface {
	Notify(ctx context.Context, alert *model.Alert) error
}

// Dispatcher persists and announces approved alerts. Steps run in order:
// image saved, log appended, notification sent.
type Dispatcher[F any] struct {
	images   ImageStore[F]
	log      Log
	notifier Notifier
	logger   *logger.Logger
	newID    func() string
}

// NewDispatcher wires the collaborators. notifier may be nil.
func NewDispatcher[F any](images ImageStore[F], log Log, notifier Notifier, logger *logger.Logger) *Dispatcher[F] {
	return &Dispatcher[F]{
		images:   images,
		log:      log,
		notifier: notifier,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Dispatch handles one approved alert. A persistence failure stops the
// sequence and returns ErrPersistence with a nil alert. A delivery failure
// returns the logged alert together with an ErrDelivery error.
func (d *Dispatcher[F]) Dispatch(ctx context.Context, frame F, seq int, novel novelty.LabelSet, now time.Time) (*model.Alert, error) {
	if novel.IsEmpty() {
		return nil, ErrEmptyAlert
	}

	labels := novel.Sorted()
	name := ImageName(now, labels)

	imagePath, err := d.images.Save(frame, name)
	if err != nil {
		return nil, fmt.Errorf("%w: save image %s: %v", ErrPersistence, name, err)
	}

	alert := &model.Alert{
		ID:        d.newID(),
		Timestamp: now,
		Labels:    labels,
		ImagePath: imagePath,
		FrameSeq:  seq,
	}

	if err := d.log.Append(ctx, alert); err != nil {
		return nil, fmt.Errorf("%w: append alert %s: %v", ErrPersistence, alert.ID, err)
	}

	d.logger.Info("Alert logged: %s, objects: %s, image saved: %s",
		now.Format(time.DateTime), strings.Join(labels, ", "), imagePath)

	if d.notifier == nil {
		return alert, nil
	}
	if err := d.notifier.Notify(ctx, alert); err != nil {
		return alert, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return alert, nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ImageName builds the file name of an alert image from its time and labels.
func ImageName(now time.Time, labels []string) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		clean := strings.Trim(unsafeNameChars.ReplaceAllString(label, "-"), "-")
		if clean != "" {
			parts = append(parts, clean)
		}
	}

	name := "alert_" + now.Format("20060102_150405.000")
	if len(parts) > 0 {
		name += "_" + strings.Join(parts, "_")
	}
	return name + ".jpg"
}

// MultiLog appends each alert to every log in order and stops at the first failure.
type MultiLog []Log

func (m MultiLog) Append(ctx context.Context, alert *model.Alert) error {
	for _, l := range m {
		if err := l.Append(ctx, alert); err != nil {
			return err
		}
	}
	return nil
}
