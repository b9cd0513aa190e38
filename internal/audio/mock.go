package audio

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPlayer is a testify mock of Player.
//
//	player := new(audio.MockPlayer)
//	player.On("Play", mock.Anything).Return(nil)
type MockPlayer struct {
	mock.Mock
}

// Play records the call and returns the configured error.
func (m *MockPlayer) Play(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
