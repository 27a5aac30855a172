package manager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shea690901/TachyFont/backend"
	"github.com/Shea690901/TachyFont/cmap"
	"github.com/Shea690901/TachyFont/face"
	"github.com/Shea690901/TachyFont/header"
	"github.com/Shea690901/TachyFont/inject"
	"github.com/Shea690901/TachyFont/rle"
	"github.com/Shea690901/TachyFont/store"
)

const (
	fixtureNumGlyphs = 4
	fixtureLocaBytes = (fixtureNumGlyphs + 1) * 2
	fixtureDataBytes = 64
)

// buildFixtureBase returns a backend-style response (header prefix +
// RLE-compressed body) for a short-loca TrueType font with fixtureNumGlyphs
// empty glyphs and no cmap subtables, small enough to exercise loadChars
// without needing real cmap4/cmap12 fixtures.
func buildFixtureBase(t *testing.T) []byte {
	headerBytes := header.Encode(header.EncodeInput{
		IsTTF:      true,
		OffsetSize: 2,
		NumGlyphs:  fixtureNumGlyphs,
	})
	glyphOffset := uint32(len(headerBytes))
	glyphDataOffset := glyphOffset + fixtureLocaBytes

	headerBytes = header.Encode(header.EncodeInput{
		IsTTF:           true,
		GlyphOffset:     glyphOffset,
		GlyphDataOffset: glyphDataOffset,
		OffsetSize:      2,
		NumGlyphs:       fixtureNumGlyphs,
	})

	body := make([]byte, fixtureLocaBytes+fixtureDataBytes)
	return append(headerBytes, rle.Encode(body)...)
}

// stubBackend is a test double for backend.Service.
type stubBackend struct {
	mu sync.Mutex

	baseBytes []byte

	codepointCalls [][]rune
	nextBundle     *inject.Bundle
	failNext       bool
}

func (s *stubBackend) RequestFontBase(ctx context.Context, info backend.FontInfo) ([]byte, error) {
	return s.baseBytes, nil
}

func (s *stubBackend) RequestCodepoints(ctx context.Context, info backend.FontInfo, codepoints []rune) (*inject.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]rune{}, codepoints...)
	s.codepointCalls = append(s.codepointCalls, cp)

	if s.failNext {
		s.failNext = false
		return nil, errBackendBoom
	}
	if s.nextBundle != nil {
		return s.nextBundle, nil
	}
	return &inject.Bundle{}, nil
}

func (s *stubBackend) calls() [][]rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]rune{}, s.codepointCalls...)
}

var errBackendBoom = &backendBoomError{}

type backendBoomError struct{}

func (*backendBoomError) Error() string { return "backend: boom" }

func newTestManager(t *testing.T, be *stubBackend, st store.Store, opts ...Option) *Manager {
	opts = append([]Option{
		WithMinNonObfuscationLength(0),
		WithPersistDelay(20 * time.Millisecond),
	}, opts...)
	m, err := New(
		context.Background(),
		backend.FontInfo{Family: "NotoSansCJK", Weight: "400", URLBase: "http://example.invalid"},
		cmap.Mapping{},
		be,
		st,
		face.NewNullBinder(nil),
		nil,
		opts...,
	)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestManagerColdStartRequestsOnlyUnknownChars(t *testing.T) {
	be := &stubBackend{baseBytes: buildFixtureBase(t)}
	st := store.NewMemStore("incrfonts/NotoSansCJK")
	m := newTestManager(t, be, st)

	require.Equal(t, Ready, m.State())

	err := m.LoadChars(context.Background(), []rune{0x61, 0x62, 0x63})
	require.NoError(t, err)

	calls := be.calls()
	require.Len(t, calls, 1)
	require.ElementsMatch(t, []rune{0x61, 0x62, 0x63}, calls[0])
}

func TestManagerWarmStartSkipsKnownChars(t *testing.T) {
	be := &stubBackend{baseBytes: buildFixtureBase(t)}
	st := store.NewMemStore("incrfonts/NotoSansCJK")
	require.NoError(t, st.Put(context.Background(), store.SlotBase, buildWarmBase(t)))
	require.NoError(t, st.Put(context.Background(), store.SlotCharList, EncodeCharList(CharList{0x61: {}, 0x62: {}, 0x63: {}})))

	m := newTestManager(t, be, st)
	require.NoError(t, m.LoadChars(context.Background(), []rune{0x61, 0x64}))

	calls := be.calls()
	require.Len(t, calls, 1)
	require.ElementsMatch(t, []rune{0x64}, calls[0])
}

func buildWarmBase(t *testing.T) []byte {
	// A warm base is already expanded+sanitized: store exactly what a
	// cold-start would have produced after RLE decode, skipping the RLE
	// wrapper entirely.
	headerBytes := header.Encode(header.EncodeInput{
		IsTTF:      true,
		OffsetSize: 2,
		NumGlyphs:  fixtureNumGlyphs,
	})
	glyphOffset := uint32(len(headerBytes))
	glyphDataOffset := glyphOffset + fixtureLocaBytes
	headerBytes = header.Encode(header.EncodeInput{
		IsTTF:           true,
		GlyphOffset:     glyphOffset,
		GlyphDataOffset: glyphDataOffset,
		OffsetSize:      2,
		NumGlyphs:       fixtureNumGlyphs,
	})
	body := make([]byte, fixtureLocaBytes+fixtureDataBytes)
	return append(headerBytes, body...)
}

func TestManagerSplitsRequestsLargerThanReqSize(t *testing.T) {
	be := &stubBackend{baseBytes: buildFixtureBase(t)}
	st := store.NewMemStore("incrfonts/NotoSansCJK")
	m := newTestManager(t, be, st, WithReqSize(2))

	require.NoError(t, m.LoadChars(context.Background(), []rune{0x30, 0x31, 0x32}))
	require.Eventually(t, func() bool {
		return len(be.calls()) == 2
	}, time.Second, 5*time.Millisecond)

	calls := be.calls()
	require.Len(t, calls[0], 2)
}

func TestManagerBackendFailureLeavesCharListUnchangedForRetry(t *testing.T) {
	be := &stubBackend{baseBytes: buildFixtureBase(t), failNext: true}
	st := store.NewMemStore("incrfonts/NotoSansCJK")
	m := newTestManager(t, be, st)

	err := m.LoadChars(context.Background(), []rune{0x61})
	require.Error(t, err)

	err = m.LoadChars(context.Background(), []rune{0x61})
	require.NoError(t, err)

	calls := be.calls()
	require.Len(t, calls, 2)
	require.Equal(t, calls[0], calls[1])
}

// countingStore wraps a Store and counts Put calls across all slots, so a test can
// assert how many writes actually happened rather than just that one did.
type countingStore struct {
	store.Store
	mu   sync.Mutex
	puts int
}

func (s *countingStore) Put(ctx context.Context, slot store.Slot, data []byte) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.Store.Put(ctx, slot, data)
}

func (s *countingStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func TestManagerPersistCoalescesRapidCalls(t *testing.T) {
	be := &stubBackend{baseBytes: buildFixtureBase(t)}
	cs := &countingStore{Store: store.NewMemStore("incrfonts/NotoSansCJK")}
	m := newTestManager(t, be, cs, WithPersistDelay(30*time.Millisecond))

	// Let the construction-time persist (triggered by the cold-start
	// sanitize pass marking the base dirty) settle before measuring.
	require.Eventually(t, func() bool {
		return cs.putCount() >= 1
	}, time.Second, 5*time.Millisecond)

	before := cs.putCount()
	for i := 0; i < 5; i++ {
		m.persistDelayed(store.SlotBase)
	}

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, before+1, cs.putCount())
}
