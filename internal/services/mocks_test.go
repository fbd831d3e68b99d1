package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thereayou/wordspy/internal/database"
	"github.com/thereayou/wordspy/internal/models"
)

// --- Store ---

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateRoom(ctx context.Context, room *models.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *MockStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	return m.Called(ctx, player).Error(0)
}

func (m *MockStore) GetRoomWithPlayers(ctx context.Context, roomID string) (*models.Room, error) {
	args := m.Called(ctx, roomID)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

func (m *MockStore) ListPublicRooms(ctx context.Context) ([]models.RoomSummary, error) {
	args := m.Called(ctx)
	rooms, _ := args.Get(0).([]models.RoomSummary)
	return rooms, args.Error(1)
}

func (m *MockStore) UpdateRoom(ctx context.Context, roomID string, fields map[string]interface{}) error {
	return m.Called(ctx, roomID, fields).Error(0)
}

func (m *MockStore) UpdatePlayer(ctx context.Context, playerID string, fields map[string]interface{}) error {
	return m.Called(ctx, playerID, fields).Error(0)
}

func (m *MockStore) SetPlayerReady(ctx context.Context, roomID, playerID string, ready bool) (bool, error) {
	args := m.Called(ctx, roomID, playerID, ready)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ResetPlayers(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

func (m *MockStore) DeleteRoom(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

func (m *MockStore) DeletePlayer(ctx context.Context, playerID string) error {
	return m.Called(ctx, playerID).Error(0)
}

// Transaction runs fn against the mock itself.
func (m *MockStore) Transaction(ctx context.Context, fn func(tx database.Store) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(m)
}

// --- Locker ---

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	unlock, _ := args.Get(0).(func())
	return unlock, args.Error(1)
}
