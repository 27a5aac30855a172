package face

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NullBinder logs every call and always succeeds immediately. CSS/DOM
// manipulation is out of scope per spec.md §1; NullBinder exists so
// manager can be built and exercised by tests without a browser.
type NullBinder struct {
	log *logrus.Entry

	seq int
}

// NewNullBinder creates a NullBinder logging through log (or a default
// logger if nil).
func NewNullBinder(log *logrus.Entry) *NullBinder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &NullBinder{log: log}
}

func (b *NullBinder) InstallTemporary(ctx context.Context, family, weight string, data []byte) (string, error) {
	b.seq++
	tmpFamily := fmt.Sprintf("tmp-%s-%d", family, b.seq)
	b.log.WithFields(logrus.Fields{
		"component": "face",
		"family":    family,
		"weight":    weight,
		"tmpFamily": tmpFamily,
		"bytes":     len(data),
	}).Debug("installed temporary face")
	return tmpFamily, nil
}

func (b *NullBinder) Preload(ctx context.Context, tmpFamily, sampleText string, sizePx int) error {
	b.log.WithFields(logrus.Fields{
		"component": "face",
		"tmpFamily": tmpFamily,
		"sizePx":    sizePx,
	}).Debug("preloaded temporary face")
	return nil
}

func (b *NullBinder) Promote(ctx context.Context, tmpFamily, realFamily, weight string) error {
	b.log.WithFields(logrus.Fields{
		"component":  "face",
		"tmpFamily":  tmpFamily,
		"realFamily": realFamily,
		"weight":     weight,
	}).Debug("promoted temporary face")
	return nil
}

func (b *NullBinder) SetVisibility(class string, visible bool) {
	b.log.WithFields(logrus.Fields{
		"component": "face",
		"class":     class,
		"visible":   visible,
	}).Debug("set visibility")
}
