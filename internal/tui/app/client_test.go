package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/machibo/backoffice/internal/api/apitest"
	usecase "github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/audio"
	"github.com/machibo/backoffice/internal/settings"
	"github.com/machibo/backoffice/internal/storage"
	"github.com/machibo/backoffice/internal/tui/state"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(model tea.Model) error {
	args := m.Called(model)
	return args.Error(0)
}

func newRuntime(t *testing.T) *usecase.Runtime {
	t.Helper()
	srv := apitest.New(t)
	rt, err := usecase.NewRuntimeWith(storage.NewMemoryStore(), srv.URL, nil)
	require.NoError(t, err)
	rt.Settings = settings.NewStore(filepath.Join(t.TempDir(), "preferences.toml"))
	return rt
}

func TestNewClientPanicsWithoutRuntime(t *testing.T) {
	assert.Panics(t, func() { NewClient(nil, nil, nil) })
}

func TestRunPassesConsoleModel(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", mock.AnythingOfType("*state.Model")).Return(nil)

	client := NewClient(newRuntime(t), runner, new(audio.MockPlayer))
	require.NoError(t, client.Run(context.Background()))
	runner.AssertExpectations(t)
}

func TestRunReturnsProgramError(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", mock.Anything).Return(errors.New("no tty"))

	client := NewClient(newRuntime(t), runner, new(audio.MockPlayer))
	err := client.Run(context.Background())
	assert.EqualError(t, err, "no tty")
}

func TestCreateModelUsesGateOfPoller(t *testing.T) {
	rt := newRuntime(t)
	client := NewClient(rt, new(mockRunner), new(audio.MockPlayer))
	p := rt.NewPoller(new(audio.MockPlayer), nil)
	model := client.CreateModel(context.Background(), p)
	assert.IsType(t, &state.Model{}, model)
	assert.Equal(t, 0, model.Badge())
}
