package manager

import (
	"context"

	"github.com/sirupsen/logrus"
)

// setFontSampleText is the short string preloaded at setFontSamplePx
// during the temporary-family preload step, per spec.md §4.6.3.
const (
	setFontSampleText = "BESbswy"
	setFontSamplePx   = 20
)

// setFont performs the two-stage font-face swap of spec.md §4.6.3,
// serialized through finishPrecedingSetFont so at most one swap for this
// font is ever in flight. It reads a snapshot of the base bytes taken at
// entry, so it may run concurrently with the next loadChars batch
// (spec.md §5).
func (m *Manager) setFont(ctx context.Context) error {
	return m.setFontQueue.Run(ctx, func(ctx context.Context) error {
		m.mu.Lock()
		snapshot := append([]byte{}, m.baseBuf...)
		m.mu.Unlock()

		tmpFamily, err := m.binder.InstallTemporary(ctx, m.fontInfo.Family, m.fontInfo.Weight, snapshot)
		if err != nil {
			return err
		}
		if err := m.binder.Preload(ctx, tmpFamily, setFontSampleText, setFontSamplePx); err != nil {
			return err
		}
		if err := m.binder.Promote(ctx, tmpFamily, m.fontInfo.Family, m.fontInfo.Weight); err != nil {
			return err
		}

		m.log.WithFields(logrus.Fields{
			"component": "manager",
			"tmpFamily": tmpFamily,
		}).Debug("promoted new base into live font-face rule")
		return nil
	})
}
