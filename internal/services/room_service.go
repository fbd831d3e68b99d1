package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/thereayou/wordspy/internal/database"
	"github.com/thereayou/wordspy/internal/lock"
	"github.com/thereayou/wordspy/internal/models"
	"github.com/thereayou/wordspy/pkg/auth"
)

// MinPlayers is the smallest roster a game can start with.
const MinPlayers = 3

const defaultStoreTimeout = 5 * time.Second

type CreateRoomInput struct {
	Name          string
	PlayerName    string
	MaxPlayers    int
	ImpostorCount int
	IsPrivate     bool
	Password      string
	Theme         models.Theme
}

type JoinRoomInput struct {
	Name     string
	Password string
}

// RoomService runs the room lifecycle: lobby management, game start and
// the way back to the lobby. Mutations of one room are serialized through
// the Locker and every multi-row write happens in a single transaction.
type RoomService struct {
	store    database.Store
	locker   lock.Locker
	assigner *RoleAssigner
	rng      Random
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewRoomService creates a RoomService. timeout bounds each operation,
// including the wait for the room lock.
func NewRoomService(
	store database.Store,
	locker lock.Locker,
	assigner *RoleAssigner,
	rng Random,
	timeout time.Duration,
	logger zerolog.Logger,
) *RoomService {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &RoomService{
		store:    store,
		locker:   locker,
		assigner: assigner,
		rng:      rng,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*models.Room, error) {
	if err := validateTheme(in.Theme); err != nil {
		return nil, err
	}
	if err := validateSettings(in); err != nil {
		return nil, err
	}

	roomID, err := s.newID()
	if err != nil {
		return nil, err
	}
	hostID, err := s.newID()
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:            roomID,
		Name:          strings.TrimSpace(in.Name),
		GamePhase:     models.PhaseLobby,
		MaxPlayers:    in.MaxPlayers,
		ImpostorCount: in.ImpostorCount,
		IsPrivate:     in.IsPrivate,
	}
	room.SetTheme(in.Theme)
	if in.IsPrivate && in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		room.PasswordHash = hash
	}
	host := &models.Player{
		ID:      hostID,
		RoomID:  roomID,
		Name:    strings.TrimSpace(in.PlayerName),
		IsHost:  true,
		IsReady: true,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.store.Transaction(ctx, func(tx database.Store) error {
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		return tx.CreatePlayer(ctx, host)
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	s.logger.Info().Str("room_id", roomID).Str("host_id", hostID).Msg("room created")
	return s.snapshot(ctx, roomID)
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.snapshot(ctx, roomID)
}

func (s *RoomService) ListPublicRooms(ctx context.Context) ([]models.RoomSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rooms, err := s.store.ListPublicRooms(ctx)
	if err != nil {
		return nil, storeError(err, nil)
	}
	return rooms, nil
}

// JoinRoom adds a non-host player to a room that is still in the lobby and
// returns the room together with the new player's id.
func (s *RoomService) JoinRoom(ctx context.Context, roomID string, in JoinRoomInput) (*models.Room, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	playerID, err := s.newID()
	if err != nil {
		return nil, "", err
	}

	var room *models.Room
	err = s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		current, err := s.snapshot(ctx, roomID)
		if err != nil {
			return err
		}
		if current.GamePhase != models.PhaseLobby {
			return ErrGameInProgress
		}
		if current.HasPassword() && !auth.CheckPassword(current.PasswordHash, in.Password) {
			return ErrWrongPassword
		}
		if len(current.Players) >= current.MaxPlayers {
			return ErrRoomFull
		}

		err = s.store.CreatePlayer(ctx, &models.Player{
			ID:     playerID,
			RoomID: roomID,
			Name:   name,
		})
		if err != nil {
			return storeError(err, nil)
		}
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return room, playerID, nil
}

// LeaveRoom removes a player. When the host leaves the whole room is
// deleted and the returned room is nil.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, playerID string) (*models.Room, error) {
	var room *models.Room
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		current, err := s.snapshot(ctx, roomID)
		if err != nil {
			return err
		}
		player := current.Player(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}

		if player.IsHost {
			if err := s.store.DeleteRoom(ctx, roomID); err != nil {
				return storeError(err, ErrRoomNotFound)
			}
			s.logger.Info().Str("room_id", roomID).Msg("host left, room closed")
			return nil
		}

		if err := s.store.DeletePlayer(ctx, playerID); err != nil {
			return storeError(err, ErrPlayerNotFound)
		}
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	return room, err
}

// SetReady updates a player's readiness. A player id that does not belong to
// the room is ignored.
func (s *RoomService) SetReady(ctx context.Context, roomID, playerID string, ready bool) (*models.Room, error) {
	var room *models.Room
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		found, err := s.store.SetPlayerReady(ctx, roomID, playerID, ready)
		if err != nil {
			return storeError(err, nil)
		}
		if !found {
			s.logger.Debug().Str("room_id", roomID).Str("player_id", playerID).Msg("ready update matched no player")
		}
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	return room, err
}

// UpdateSettings replaces the room theme. No other setting is mutable once
// the room exists.
func (s *RoomService) UpdateSettings(ctx context.Context, roomID string, theme models.Theme) (*models.Room, error) {
	if err := validateTheme(theme); err != nil {
		return nil, err
	}

	var room *models.Room
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		err := s.store.UpdateRoom(ctx, roomID, map[string]interface{}{
			"theme_type":  theme.Kind(),
			"theme_value": theme.Value(),
		})
		if err != nil {
			return storeError(err, ErrRoomNotFound)
		}
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	return room, err
}

// StartGame deals roles and reveals them. It needs MinPlayers players and
// every non-host player ready; nothing is written when a check fails.
func (s *RoomService) StartGame(ctx context.Context, roomID string) (*models.Room, error) {
	var room *models.Room
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		current, err := s.snapshot(ctx, roomID)
		if err != nil {
			return err
		}
		if len(current.Players) < MinPlayers {
			return ErrNotEnoughPlayers
		}
		for _, p := range current.Players {
			if !p.IsHost && !p.IsReady {
				return ErrPlayersNotReady
			}
		}

		theme, err := current.Theme()
		if err != nil {
			return fmt.Errorf("room %s has a corrupt theme: %w", roomID, err)
		}
		assignments := s.assigner.Assign(current, theme)

		err = s.store.Transaction(ctx, func(tx database.Store) error {
			if err := writeAssignments(ctx, tx, assignments); err != nil {
				return err
			}
			return tx.UpdateRoom(ctx, roomID, map[string]interface{}{"game_phase": models.PhaseFinished})
		})
		if err != nil {
			return storeError(err, ErrRoomNotFound)
		}

		s.logger.Info().Str("room_id", roomID).Int("players", len(current.Players)).Msg("game started")
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	return room, err
}

// RestartGame deals a fresh set of roles with the same settings. Readiness
// is reset to host-only and the phase is left untouched; the start checks
// are not repeated.
func (s *RoomService) RestartGame(ctx context.Context, roomID string) (*models.Room, error) {
	var room *models.Room
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		current, err := s.snapshot(ctx, roomID)
		if err != nil {
			return err
		}
		resetRoster(current)

		theme, err := current.Theme()
		if err != nil {
			return fmt.Errorf("room %s has a corrupt theme: %w", roomID, err)
		}
		assignments := s.assigner.Assign(current, theme)

		err = s.store.Transaction(ctx, func(tx database.Store) error {
			if err := tx.ResetPlayers(ctx, roomID); err != nil {
				return err
			}
			return writeAssignments(ctx, tx, assignments)
		})
		if err != nil {
			return storeError(err, ErrRoomNotFound)
		}

		s.logger.Info().Str("room_id", roomID).Msg("game restarted")
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	return room, err
}

// PlayAgain sends the room back to the lobby with roles and words cleared.
func (s *RoomService) PlayAgain(ctx context.Context, roomID string) (*models.Room, error) {
	var room *models.Room
	err := s.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		err := s.store.Transaction(ctx, func(tx database.Store) error {
			if err := tx.UpdateRoom(ctx, roomID, map[string]interface{}{"game_phase": models.PhaseLobby}); err != nil {
				return err
			}
			return tx.ResetPlayers(ctx, roomID)
		})
		if err != nil {
			return storeError(err, ErrRoomNotFound)
		}

		s.logger.Info().Str("room_id", roomID).Msg("room back to lobby")
		room, err = s.snapshot(ctx, roomID)
		return err
	})
	return room, err
}

func (s *RoomService) withRoomLock(ctx context.Context, roomID string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, roomID)
	if err != nil {
		return storeError(err, nil)
	}
	defer unlock()

	return fn(ctx)
}

func (s *RoomService) snapshot(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.store.GetRoomWithPlayers(ctx, roomID)
	if err != nil {
		return nil, storeError(err, ErrRoomNotFound)
	}
	return room, nil
}

func (s *RoomService) newID() (string, error) {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// validateTheme rejects a missing theme and any theme that would not survive
// a round trip through storage.
func validateTheme(theme models.Theme) error {
	if theme == nil {
		return ErrInvalidTheme
	}
	if _, err := models.ParseTheme(theme.Kind(), theme.Value()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	return nil
}

func validateSettings(in CreateRoomInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: room name is required", ErrInvalidSettings)
	case strings.TrimSpace(in.PlayerName) == "":
		return fmt.Errorf("%w: player name is required", ErrInvalidSettings)
	case in.MaxPlayers < 1:
		return fmt.Errorf("%w: maxPlayers must be at least 1", ErrInvalidSettings)
	case in.ImpostorCount < 0:
		return fmt.Errorf("%w: impostorCount cannot be negative", ErrInvalidSettings)
	}
	return nil
}

// resetRoster applies the post-game reset to an in-memory snapshot.
func resetRoster(room *models.Room) {
	for i := range room.Players {
		p := &room.Players[i]
		p.Role = nil
		p.Word = nil
		p.IsReady = p.IsHost
	}
}

func writeAssignments(ctx context.Context, tx database.Store, assignments []models.Assignment) error {
	for _, a := range assignments {
		var word interface{}
		if a.Word != nil {
			word = *a.Word
		}
		err := tx.UpdatePlayer(ctx, a.PlayerID, map[string]interface{}{
			"role": a.Role,
			"word": word,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
