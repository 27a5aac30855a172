package manager

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/Shea690901/TachyFont/store"
	"github.com/Shea690901/TachyFont/tferr"
)

// LoadChars requests glyphs for chars be loaded into the base, per
// spec.md §4.6's loadChars algorithm. It serializes through
// finishPrecedingCharsRequest so only one character request is in flight
// per font at a time.
func (m *Manager) LoadChars(ctx context.Context, chars []rune) error {
	m.addPending(chars)
	return m.charsQueue.Run(ctx, m.doLoadChars)
}

func (m *Manager) addPending(chars []rune) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chars {
		m.pending[c] = struct{}{}
	}
}

func (m *Manager) snapshotAndClearPending() []rune {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	out := make([]rune, 0, len(m.pending))
	for c := range m.pending {
		out = append(out, c)
	}
	m.pending = make(map[rune]struct{})
	return out
}

// doLoadChars is steps 1-12 of spec.md §4.6, with one deliberate
// reordering: step 7's "optimistic" charList update is applied only
// after the backend call at step 8 succeeds, not before. The numbered
// steps and spec.md §5/§7 disagree on this point ("a failed backend
// fetch ... leaves the charList optimistic update rolled back by not
// occurring ... step 7 happens only after the backend returns"); this
// module follows §5/§7's explicit failure-mode statement, recorded as an
// Open Question resolution in DESIGN.md.
func (m *Manager) doLoadChars(ctx context.Context) error {
	requested := m.snapshotAndClearPending() // step 1
	if len(requested) == 0 {
		return nil
	}

	m.mu.Lock()
	needed := make([]rune, 0, len(requested))
	for _, c := range requested {
		if _, ok := m.charList[c]; !ok {
			needed = append(needed, c)
		}
	}
	m.mu.Unlock()
	if len(needed) == 0 { // step 3
		return nil
	}

	needed = obfuscate(needed, m.cfg.MinNonObfuscationLength, m.cfg.ObfuscationRange, m.rng) // step 4
	slices.Sort(needed)                                                                       // step 5

	var remaining []rune
	if len(needed) > m.cfg.ReqSize { // step 6
		remaining = append([]rune{}, needed[m.cfg.ReqSize:]...)
		needed = needed[:m.cfg.ReqSize]
	}

	bundle, err := m.be.RequestCodepoints(ctx, m.fontInfo, needed) // step 8
	if err != nil {
		m.log.WithError(err).Warn("backend request failed; charList left unmodified for retry")
		return err
	}

	m.mu.Lock() // step 7, moved after success
	for _, c := range needed {
		m.charList[c] = struct{}{}
	}
	m.mu.Unlock()

	glyphToCodeMap := make(map[uint16]rune, len(needed)) // step 9
	for _, c := range needed {
		if info, ok := m.cmapMapping[c]; ok {
			glyphToCodeMap[info.GlyphID] = c
		}
	}

	if err := m.inj.Inject(bundle, m.cmapMapping, glyphToCodeMap); err != nil { // step 10
		var corrupt *tferr.CorruptFontError
		if errors.As(err, &corrupt) {
			return m.fatal(err)
		}
		return err
	}

	needToSetFont := false
	for _, rec := range bundle.Records { // step 11
		if rec.Length > 0 {
			needToSetFont = true
			break
		}
	}

	m.mu.Lock() // step 12
	m.dirty.BaseDirty = true
	m.dirty.CharListDirty = true
	m.mu.Unlock()
	m.persistDelayed(store.SlotBase)
	m.persistDelayed(store.SlotCharList)

	if needToSetFont {
		go func() {
			if err := m.setFont(context.Background()); err != nil {
				m.log.WithError(err).Error("setFont failed")
			} else {
				m.revealNow()
			}
		}()
	}

	if len(remaining) > 0 {
		m.log.WithFields(logrus.Fields{
			"component": "manager",
			"remaining": len(remaining),
		}).Debug("draining remaining codepoints in a follow-up request")
		go func() {
			if err := m.LoadChars(context.Background(), remaining); err != nil {
				m.log.WithError(err).Warn("follow-up loadChars failed")
			}
		}()
	}

	return nil
}
