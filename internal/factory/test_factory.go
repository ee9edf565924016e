package factory

import (
	"time"

	"github.com/wanheng20031114/whgame-Tetris/internal/dependencies/mocks"
	"github.com/wanheng20031114/whgame-Tetris/internal/services/auth"
	"github.com/wanheng20031114/whgame-Tetris/internal/storage/memory"
	"github.com/wanheng20031114/whgame-Tetris/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
