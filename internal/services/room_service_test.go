package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/wordspy/internal/database"
	"github.com/thereayou/wordspy/internal/lock"
	"github.com/thereayou/wordspy/internal/models"
	"github.com/thereayou/wordspy/internal/random"
)

func newTestService(t *testing.T) (*RoomService, *database.Database) {
	t.Helper()
	db, err := database.Connect(database.Options{
		Driver: database.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rng := random.New([32]byte{byte(len(t.Name()))})
	svc := NewRoomService(
		db,
		lock.NewLocal(),
		NewRoleAssigner(testCatalog, rng, zerolog.Nop()),
		rng,
		5*time.Second,
		zerolog.Nop(),
	)
	return svc, db
}

func defaultInput() CreateRoomInput {
	return CreateRoomInput{
		Name:          "Friday night",
		PlayerName:    "Ana",
		MaxPlayers:    6,
		ImpostorCount: 1,
		Theme:         models.PredefinedTheme{Key: "Cars"},
	}
}

// lobbyWith creates a room and joins extra players, all of them ready.
func lobbyWith(t *testing.T, svc *RoomService, in CreateRoomInput, extra int) *models.Room {
	t.Helper()
	ctx := context.Background()
	room, err := svc.CreateRoom(ctx, in)
	require.NoError(t, err)
	for i := 0; i < extra; i++ {
		_, id, err := svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: fmt.Sprintf("guest %d", i), Password: in.Password})
		require.NoError(t, err)
		_, err = svc.SetReady(ctx, room.ID, id, true)
		require.NoError(t, err)
	}
	room, err = svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	return room
}

func countHosts(room *models.Room) int {
	n := 0
	for _, p := range room.Players {
		if p.IsHost {
			n++
		}
	}
	return n
}

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService(t)

	room, err := svc.CreateRoom(context.Background(), defaultInput())
	require.NoError(t, err)

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "Friday night", room.Name)
	assert.Equal(t, models.PhaseLobby, room.GamePhase)
	require.Len(t, room.Players, 1)
	host := room.Players[0]
	assert.True(t, host.IsHost)
	assert.True(t, host.IsReady)
	assert.Equal(t, "Ana", host.Name)
	assert.Nil(t, host.Role)
	assert.NotEqual(t, room.ID, host.ID)

	theme, err := room.Theme()
	require.NoError(t, err)
	assert.Equal(t, models.PredefinedTheme{Key: "Cars"}, theme)
}

func TestCreateRoomHashesPassword(t *testing.T) {
	svc, _ := newTestService(t)
	in := defaultInput()
	in.IsPrivate = true
	in.Password = "s3cret"

	room, err := svc.CreateRoom(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, room.HasPassword())
	assert.NotEqual(t, "s3cret", room.PasswordHash)

	in.IsPrivate = false
	room, err = svc.CreateRoom(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, room.HasPassword())
}

func TestCreateRoomValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		modify func(*CreateRoomInput)
	}{
		{"no theme", func(in *CreateRoomInput) { in.Theme = nil }},
		{"blank room name", func(in *CreateRoomInput) { in.Name = "  " }},
		{"blank player name", func(in *CreateRoomInput) { in.PlayerName = "" }},
		{"zero max players", func(in *CreateRoomInput) { in.MaxPlayers = 0 }},
		{"negative impostors", func(in *CreateRoomInput) { in.ImpostorCount = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := defaultInput()
			tt.modify(&in)
			_, err := svc.CreateRoom(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	rooms, err := svc.ListPublicRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestJoinRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	in := defaultInput()
	in.MaxPlayers = 2
	room, err := svc.CreateRoom(ctx, in)
	require.NoError(t, err)

	_, _, err = svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	joined, playerID, err := svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Bo"})
	require.NoError(t, err)
	require.Len(t, joined.Players, 2)
	guest := joined.Player(playerID)
	require.NotNil(t, guest)
	assert.False(t, guest.IsHost)
	assert.False(t, guest.IsReady)
	assert.Equal(t, 1, countHosts(joined))

	_, _, err = svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Cy"})
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.ErrorIs(t, err, ErrConflict)

	_, _, err = svc.JoinRoom(ctx, "missing", JoinRoomInput{Name: "Cy"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinPrivateRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	in := defaultInput()
	in.IsPrivate = true
	in.Password = "open sesame"
	room, err := svc.CreateRoom(ctx, in)
	require.NoError(t, err)

	_, _, err = svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Bo", Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, _, err = svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Bo", Password: "open sesame"})
	assert.NoError(t, err)

	rooms, err := svc.ListPublicRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestJoinOnlyInLobby(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 2)

	_, err := svc.StartGame(ctx, room.ID)
	require.NoError(t, err)

	_, _, err = svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Late"})
	assert.ErrorIs(t, err, ErrGameInProgress)

	_, err = svc.PlayAgain(ctx, room.ID)
	require.NoError(t, err)
	_, _, err = svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Late"})
	assert.NoError(t, err)
}

func TestLeaveRoom(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 3)
	other := lobbyWith(t, svc, defaultInput(), 1)
	guest := room.Players[1]

	after, err := svc.LeaveRoom(ctx, room.ID, guest.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Len(t, after.Players, 3)
	assert.Nil(t, after.Player(guest.ID))
	assert.Equal(t, 1, countHosts(after))

	_, err = svc.LeaveRoom(ctx, room.ID, guest.ID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	// A player id from another room does not resolve here.
	_, err = svc.LeaveRoom(ctx, room.ID, other.Players[1].ID)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	host := room.Host()
	closed, err := svc.LeaveRoom(ctx, room.ID, host.ID)
	require.NoError(t, err)
	assert.Nil(t, closed)

	_, err = svc.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = db.GetRoomWithPlayers(ctx, room.ID)
	assert.True(t, database.IsNotFound(err))

	_, err = svc.LeaveRoom(ctx, room.ID, guest.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	still, err := svc.GetRoom(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, still.Players, 2)
}

func TestSetReady(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room, err := svc.CreateRoom(ctx, defaultInput())
	require.NoError(t, err)
	_, guestID, err := svc.JoinRoom(ctx, room.ID, JoinRoomInput{Name: "Bo"})
	require.NoError(t, err)

	updated, err := svc.SetReady(ctx, room.ID, guestID, true)
	require.NoError(t, err)
	assert.True(t, updated.Player(guestID).IsReady)

	updated, err = svc.SetReady(ctx, room.ID, guestID, true)
	require.NoError(t, err)
	assert.True(t, updated.Player(guestID).IsReady)

	updated, err = svc.SetReady(ctx, room.ID, "stranger", false)
	require.NoError(t, err)
	assert.True(t, updated.Player(guestID).IsReady)

	_, err = svc.SetReady(ctx, "missing", guestID, false)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestUpdateSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room, err := svc.CreateRoom(ctx, defaultInput())
	require.NoError(t, err)

	_, err = svc.UpdateSettings(ctx, room.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTheme)

	updated, err := svc.UpdateSettings(ctx, room.ID, models.CustomTheme{Word: "Volcano"})
	require.NoError(t, err)
	theme, err := updated.Theme()
	require.NoError(t, err)
	assert.Equal(t, models.CustomTheme{Word: "Volcano"}, theme)
	assert.Equal(t, 6, updated.MaxPlayers)

	_, err = svc.UpdateSettings(ctx, "missing", models.CustomTheme{Word: "x"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMalformedThemeIsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 2)

	blank := models.PredefinedTheme{Key: "  "}

	_, err := svc.UpdateSettings(ctx, room.ID, blank)
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in := defaultInput()
	in.Theme = blank
	_, err = svc.CreateRoom(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// the stored theme is untouched, so the game still starts
	started, err := svc.StartGame(ctx, room.ID)
	require.NoError(t, err)
	theme, err := started.Theme()
	require.NoError(t, err)
	assert.Equal(t, models.PredefinedTheme{Key: "Cars"}, theme)
}

func TestStartGameNeedsThreePlayers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 1)

	_, err := svc.StartGame(ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.ErrorIs(t, err, ErrInvalidState)

	after, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, after.GamePhase)
	for _, p := range after.Players {
		assert.Nil(t, p.Role)
		assert.Nil(t, p.Word)
	}
}

func TestStartGameNeedsEveryoneReady(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 2)
	_, err := svc.SetReady(ctx, room.ID, room.Players[2].ID, false)
	require.NoError(t, err)

	_, err = svc.StartGame(ctx, room.ID)
	assert.ErrorIs(t, err, ErrPlayersNotReady)

	after, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, after.GamePhase)
	for _, p := range after.Players {
		assert.Nil(t, p.Role)
	}

	// The host's own readiness is not checked.
	_, err = svc.SetReady(ctx, room.ID, room.Players[2].ID, true)
	require.NoError(t, err)
	_, err = svc.SetReady(ctx, room.ID, room.Host().ID, false)
	require.NoError(t, err)
	_, err = svc.StartGame(ctx, room.ID)
	assert.NoError(t, err)
}

func TestStartGamePredefined(t *testing.T) {
	svc, _ := newTestService(t)
	in := defaultInput()
	in.ImpostorCount = 2
	room := lobbyWith(t, svc, in, 4)

	started, err := svc.StartGame(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, started.GamePhase)
	require.Len(t, started.Players, 5)

	var impostors, crewmates int
	words := map[string]bool{}
	for _, p := range started.Players {
		require.NotNil(t, p.Role)
		switch *p.Role {
		case models.RoleImpostor:
			impostors++
			assert.Nil(t, p.Word)
		case models.RoleCrewmate:
			crewmates++
			require.NotNil(t, p.Word)
			words[*p.Word] = true
		default:
			t.Fatalf("unexpected role %s", *p.Role)
		}
	}
	assert.Equal(t, 2, impostors)
	assert.Equal(t, 3, crewmates)
	require.Len(t, words, 1)
	for w := range words {
		assert.Contains(t, testCatalog["Cars"], w)
	}
}

func TestStartGameCustomHostSpectates(t *testing.T) {
	svc, _ := newTestService(t)
	in := defaultInput()
	in.Theme = models.CustomTheme{Word: "Submarine"}
	room := lobbyWith(t, svc, in, 3)

	started, err := svc.StartGame(context.Background(), room.ID)
	require.NoError(t, err)

	host := started.Host()
	require.NotNil(t, host.Role)
	assert.Equal(t, models.RoleSpectator, *host.Role)
	assert.Equal(t, "Submarine", *host.Word)

	var impostors int
	for _, p := range started.Players {
		if p.IsHost {
			continue
		}
		require.NotNil(t, p.Role)
		assert.NotEqual(t, models.RoleSpectator, *p.Role)
		if *p.Role == models.RoleImpostor {
			impostors++
		}
	}
	assert.Equal(t, 1, impostors)
}

func TestStartGameUnknownThemeFallsBack(t *testing.T) {
	svc, _ := newTestService(t)
	in := defaultInput()
	in.Theme = models.PredefinedTheme{Key: "Board Games"}
	room := lobbyWith(t, svc, in, 2)

	started, err := svc.StartGame(context.Background(), room.ID)
	require.NoError(t, err)
	for _, p := range started.Players {
		if *p.Role == models.RoleCrewmate {
			assert.Contains(t, testCatalog["Fruits"], *p.Word)
		}
	}
}

func TestRestartGame(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 3)

	_, err := svc.StartGame(ctx, room.ID)
	require.NoError(t, err)

	restarted, err := svc.RestartGame(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, restarted.GamePhase)

	var impostors int
	for _, p := range restarted.Players {
		require.NotNil(t, p.Role, p.ID)
		assert.Equal(t, p.IsHost, p.IsReady, p.ID)
		if *p.Role == models.RoleImpostor {
			impostors++
		}
	}
	assert.Equal(t, 1, impostors)
	assert.Equal(t, 1, countHosts(restarted))

	_, err = svc.RestartGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRestartSkipsStartChecks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room, err := svc.CreateRoom(ctx, defaultInput())
	require.NoError(t, err)

	restarted, err := svc.RestartGame(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, restarted.GamePhase)
	require.NotNil(t, restarted.Players[0].Role)
	assert.Equal(t, models.RoleImpostor, *restarted.Players[0].Role)
}

func TestPlayAgain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 2)

	_, err := svc.StartGame(ctx, room.ID)
	require.NoError(t, err)

	lobby, err := svc.PlayAgain(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, lobby.GamePhase)
	for _, p := range lobby.Players {
		assert.Nil(t, p.Role)
		assert.Nil(t, p.Word)
		assert.Equal(t, p.IsHost, p.IsReady)
	}

	// Already in the lobby: still a valid transition.
	lobby, err = svc.PlayAgain(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLobby, lobby.GamePhase)

	_, err = svc.PlayAgain(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestConcurrentStartsStayConsistent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	in := defaultInput()
	in.ImpostorCount = 2
	room := lobbyWith(t, svc, in, 5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartGame(ctx, room.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	var impostors int
	words := map[string]bool{}
	for _, p := range final.Players {
		require.NotNil(t, p.Role)
		if *p.Role == models.RoleImpostor {
			impostors++
			continue
		}
		words[*p.Word] = true
	}
	assert.Equal(t, 2, impostors)
	assert.Len(t, words, 1)
}

func TestStoreTimeoutIsRetryable(t *testing.T) {
	store := new(MockStore)
	locker := new(MockLocker)
	rng := random.New([32]byte{})
	svc := NewRoomService(store, locker, NewRoleAssigner(testCatalog, rng, zerolog.Nop()), rng, time.Second, zerolog.Nop())

	locker.On("Lock", mock.Anything, "r1").Return(func() {}, nil)
	store.On("GetRoomWithPlayers", mock.Anything, "r1").Return(nil, context.DeadlineExceeded)

	_, err := svc.StartGame(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrUnavailable)
	store.AssertNotCalled(t, "Transaction", mock.Anything)
}

func TestLockTimeoutIsRetryable(t *testing.T) {
	store := new(MockStore)
	locker := new(MockLocker)
	rng := random.New([32]byte{})
	svc := NewRoomService(store, locker, NewRoleAssigner(testCatalog, rng, zerolog.Nop()), rng, time.Second, zerolog.Nop())

	locker.On("Lock", mock.Anything, "r1").Return(nil, errors.Join(lock.ErrTimeout, context.DeadlineExceeded))

	_, err := svc.PlayAgain(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrUnavailable)
	store.AssertExpectations(t)
}

func TestFailedAssignmentWritesSurfaceAsErrors(t *testing.T) {
	store := new(MockStore)
	locker := new(MockLocker)
	rng := random.New([32]byte{})
	svc := NewRoomService(store, locker, NewRoleAssigner(testCatalog, rng, zerolog.Nop()), rng, time.Second, zerolog.Nop())

	room := rosterRoom(3, 1)
	room.ThemeType = models.ThemePredefined
	room.ThemeValue = "Cars"
	for i := range room.Players {
		room.Players[i].RoomID = room.ID
		room.Players[i].IsReady = true
	}

	dbErr := errors.New("disk full")
	locker.On("Lock", mock.Anything, room.ID).Return(func() {}, nil)
	store.On("GetRoomWithPlayers", mock.Anything, room.ID).Return(room, nil)
	store.On("Transaction", mock.Anything).Return(nil)
	store.On("UpdatePlayer", mock.Anything, mock.Anything, mock.Anything).Return(dbErr)

	_, err := svc.StartGame(context.Background(), room.ID)
	assert.ErrorIs(t, err, dbErr)
	store.AssertNotCalled(t, "UpdateRoom", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetRoomNeverSeesPartialTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	room := lobbyWith(t, svc, defaultInput(), 3)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			if _, err := svc.StartGame(ctx, room.ID); !assert.NoError(t, err) {
				return
			}
			if _, err := svc.PlayAgain(ctx, room.ID); !assert.NoError(t, err) {
				return
			}
			for _, p := range room.Players {
				if p.IsHost {
					continue
				}
				if _, err := svc.SetReady(ctx, room.ID, p.ID, true); !assert.NoError(t, err) {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		snap, err := svc.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		for _, p := range snap.Players {
			switch snap.GamePhase {
			case models.PhaseFinished:
				assert.NotNil(t, p.Role, "finished room with a player without role")
			case models.PhaseLobby:
				assert.Nil(t, p.Role, "lobby with a dealt role")
			}
		}
	}
}
