// Package manager implements the Font Manager, the per-font façade of
// spec.md §4.6: it holds the base buffer, serializes load/persist/setFont
// operations through explicit task queues (spec.md §9), schedules backend
// requests, batches and obfuscates code points, and reconciles persisted
// state with in-memory state.
package manager

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shea690901/TachyFont/backend"
	"github.com/Shea690901/TachyFont/cmap"
	"github.com/Shea690901/TachyFont/face"
	"github.com/Shea690901/TachyFont/header"
	"github.com/Shea690901/TachyFont/inject"
	"github.com/Shea690901/TachyFont/internal/queue"
	"github.com/Shea690901/TachyFont/rle"
	"github.com/Shea690901/TachyFont/sanitize"
	"github.com/Shea690901/TachyFont/store"
	"github.com/Shea690901/TachyFont/tferr"
)

// State is the Font Manager's lifecycle stage, per spec.md §4.6.
type State int

const (
	Opening State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Manager is one font's façade over the incremental font engine.
type Manager struct {
	cfg      Config
	log      *logrus.Entry
	fontInfo backend.FontInfo

	be     backend.Service
	st     store.Store
	binder face.Binder

	charsQueue   *queue.Queue
	setFontQueue *queue.Queue
	persistQueue *queue.Queue

	rng *rand.Rand

	mu          sync.Mutex
	state       State
	fi          *header.FileInfo
	baseBuf     []byte
	cmapMapping cmap.Mapping
	inj         *inject.Injector
	charList    CharList
	pending     map[rune]struct{}
	dirty       PersistState

	persistTimer *time.Timer
	visTimer     *time.Timer
}

// New creates a Manager, synchronously taking it through Opening →
// Loading → Ready (or Failed). mapping is the build step's Cmap Mapping
// for this font (spec.md §3); it is not fetched through Service or Store
// because the distilled spec treats it as provided alongside the base.
func New(
	ctx context.Context,
	fontInfo backend.FontInfo,
	mapping cmap.Mapping,
	be backend.Service,
	st store.Store,
	binder face.Binder,
	log *logrus.Entry,
	opts ...Option,
) (*Manager, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{"component": "manager", "family": fontInfo.Family})

	m := &Manager{
		cfg:          cfg,
		log:          log,
		fontInfo:     fontInfo,
		be:           be,
		st:           st,
		binder:       binder,
		cmapMapping:  mapping,
		charsQueue:   queue.New(),
		setFontQueue: queue.New(),
		persistQueue: queue.New(),
		rng:          rand.New(rand.NewSource(fontInfoSeed(fontInfo))),
		pending:      make(map[rune]struct{}),
		charList:     make(CharList),
		state:        Opening,
	}

	m.binder.SetVisibility(m.visibilityClass(), cfg.Visibility == "visible")
	m.armVisibilityTimer()

	if err := m.open(ctx); err != nil {
		m.setState(Failed)
		return nil, err
	}
	m.setState(Ready)
	return m, nil
}

func fontInfoSeed(fi backend.FontInfo) int64 {
	h := int64(0)
	for _, r := range fi.Family + fi.Weight {
		h = h*31 + int64(r)
	}
	return h
}

func (m *Manager) visibilityClass() string {
	return "tachyfont-" + m.fontInfo.Family + "-" + m.fontInfo.Weight
}

func (m *Manager) armVisibilityTimer() {
	m.visTimer = time.AfterFunc(m.cfg.MaxVisibilityTimeout, func() {
		m.binder.SetVisibility(m.visibilityClass(), true)
	})
}

func (m *Manager) revealNow() {
	if m.visTimer != nil {
		m.visTimer.Stop()
	}
	m.binder.SetVisibility(m.visibilityClass(), true)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// State returns the manager's current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// open performs the Opening → Loading → Ready transition: resolve the
// store handle (already open, passed in by the caller), load or fetch
// the base, load or default the char list.
func (m *Manager) open(ctx context.Context) error {
	m.setState(Loading)

	baseBytes, fromStore, err := m.loadOrFetchBase(ctx)
	if err != nil {
		return err
	}

	fi, headerLen, err := header.Parse(baseBytes)
	if err != nil {
		return err
	}

	if !fromStore {
		expanded, err := rle.DecodeBase(baseBytes[:headerLen], bytes.NewReader(baseBytes[headerLen:]))
		if err != nil {
			return err
		}
		if err := sanitize.Sanitize(m.log, fi, expanded); err != nil {
			return err
		}
		baseBytes = expanded
		m.dirty.BaseDirty = true
	}

	cm, err := cmap.New(fi, baseBytes, m.log)
	if err != nil {
		return err
	}
	if !fromStore {
		// The initial full overwrite from fi.CompactGOS establishes the
		// pre-injection state (spec.md §4.4.1). A persisted base's cmap
		// has already been activated glyph-by-glyph in a prior session;
		// fi.CompactGOS still reflects the header's pristine segments
		// (it is parsed verbatim and never mutated), so re-running this
		// on a warm start would stomp every already-activated entry back
		// to .notdef.
		if err := cm.WriteCmap4(); err != nil {
			return err
		}
		if err := cm.WriteCmap12(); err != nil {
			return err
		}
	}

	inj, err := inject.New(fi, baseBytes, m.log)
	if err != nil {
		return err
	}

	charList, err := m.loadOrDefaultCharList(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.fi = fi
	m.baseBuf = baseBytes
	m.inj = inj
	m.charList = charList
	m.mu.Unlock()

	if m.dirty.BaseDirty {
		m.persistDelayed(store.SlotBase)
	}
	return nil
}

func (m *Manager) loadOrFetchBase(ctx context.Context) (data []byte, fromStore bool, err error) {
	if m.cfg.PersistData {
		data, err = m.st.Get(ctx, store.SlotBase)
		if err == nil {
			return data, true, nil
		}
		var missErr *tferr.PersistMissError
		if !errors.As(err, &missErr) {
			m.log.WithError(err).Warn("persisted base read failed; falling back to backend")
		}
	}

	data, err = m.be.RequestFontBase(ctx, m.fontInfo)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

func (m *Manager) loadOrDefaultCharList(ctx context.Context) (CharList, error) {
	if !m.cfg.PersistData {
		return make(CharList), nil
	}
	blob, err := m.st.Get(ctx, store.SlotCharList)
	var missErr *tferr.PersistMissError
	if errors.As(err, &missErr) {
		return make(CharList), nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeCharList(blob)
}

// Close releases the manager's background resources. It does not close
// the underlying Store, which the caller owns.
func (m *Manager) Close() {
	m.charsQueue.Close()
	m.setFontQueue.Close()
	m.persistQueue.Close()
	if m.visTimer != nil {
		m.visTimer.Stop()
	}
	m.mu.Lock()
	if m.persistTimer != nil {
		m.persistTimer.Stop()
	}
	m.mu.Unlock()
}

func (m *Manager) fatal(err error) error {
	m.log.WithError(err).Error("unrecoverable error; font entering failed state")
	m.setState(Failed)
	return err
}
