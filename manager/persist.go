package manager

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/store"
	"github.com/Shea690901/TachyFont/tferr"
)

// persistDelayed implements spec.md §4.6.2: mark slot dirty and arm a
// single-shot coalescing timer if one isn't already running. Rapid
// repeated calls coalesce onto the same timer; the flags are sticky so
// the eventual fire drains whatever is dirty at that moment.
func (m *Manager) persistDelayed(slot store.Slot) {
	m.mu.Lock()
	switch slot {
	case store.SlotBase:
		m.dirty.BaseDirty = true
	case store.SlotCharList:
		m.dirty.CharListDirty = true
	}
	armed := m.persistTimer != nil
	if !armed {
		m.persistTimer = time.AfterFunc(m.cfg.PersistDelay, m.firePersist)
	}
	m.mu.Unlock()
}

func (m *Manager) firePersist() {
	m.mu.Lock()
	m.persistTimer = nil
	m.mu.Unlock()

	if err := m.persistQueue.Run(context.Background(), m.doPersist); err != nil {
		m.log.WithError(err).Warn("persist failed")
	}
}

func (m *Manager) doPersist(ctx context.Context) error {
	m.mu.Lock()
	baseDirty := m.dirty.BaseDirty
	charDirty := m.dirty.CharListDirty
	m.dirty.BaseDirty = false
	m.dirty.CharListDirty = false
	var baseSnapshot []byte
	if baseDirty {
		baseSnapshot = append([]byte{}, m.baseBuf...)
	}
	var charSnapshot CharList
	if charDirty {
		charSnapshot = make(CharList, len(m.charList))
		for c := range m.charList {
			charSnapshot[c] = struct{}{}
		}
	}
	m.mu.Unlock()

	if !m.cfg.PersistData {
		return nil
	}

	if baseDirty {
		if err := m.st.Put(ctx, store.SlotBase, baseSnapshot); err != nil {
			m.mu.Lock()
			m.dirty.BaseDirty = true
			m.mu.Unlock()
			return tferr.PersistIo(string(store.SlotBase), err)
		}
	}
	if charDirty {
		if err := m.st.Put(ctx, store.SlotCharList, EncodeCharList(charSnapshot)); err != nil {
			m.mu.Lock()
			m.dirty.CharListDirty = true
			m.mu.Unlock()
			return tferr.PersistIo(string(store.SlotCharList), err)
		}
	}

	m.log.WithFields(logrus.Fields{
		"component": "manager",
		"base":      baseDirty,
		"charlist":  charDirty,
	}).Debug("persisted dirty slots")
	return nil
}
