package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/thereayou/wordspy/internal/database"
	"github.com/thereayou/wordspy/internal/lock"
)

// Error kinds. Every error returned by RoomService wraps exactly one of them.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	// ErrUnavailable marks failures worth retrying: the store or the room lock
	// did not answer in time.
	ErrUnavailable = errors.New("temporarily unavailable")
)

var (
	ErrRoomNotFound     = fmt.Errorf("room %w", ErrNotFound)
	ErrPlayerNotFound   = fmt.Errorf("player %w", ErrNotFound)
	ErrInvalidTheme     = fmt.Errorf("%w: invalid theme", ErrInvalidInput)
	ErrInvalidSettings  = fmt.Errorf("%w: invalid room settings", ErrInvalidInput)
	ErrNotEnoughPlayers = fmt.Errorf("%w: a minimum of %d players is required to start", ErrInvalidState, MinPlayers)
	ErrPlayersNotReady  = fmt.Errorf("%w: not all players are ready", ErrInvalidState)
	ErrGameInProgress   = fmt.Errorf("%w: players can only join while the room is in the lobby", ErrInvalidState)
	ErrRoomFull         = fmt.Errorf("%w: room is full", ErrConflict)
	ErrWrongPassword    = fmt.Errorf("%w: wrong room password", ErrForbidden)
)

// storeError translates a store failure. notFound replaces a missing-record
// error; deadline and connection failures become ErrUnavailable.
func storeError(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && database.IsNotFound(err):
		return notFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, lock.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
