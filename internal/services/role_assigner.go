package services

import (
	"github.com/rs/zerolog"
	"github.com/thereayou/wordspy/internal/models"
)

// RoleAssigner picks the secret word of a game and deals roles.
type RoleAssigner struct {
	catalog ThemeCatalog
	rng     Random
	logger  zerolog.Logger
}

func NewRoleAssigner(catalog ThemeCatalog, rng Random, logger zerolog.Logger) *RoleAssigner {
	return &RoleAssigner{catalog: catalog, rng: rng, logger: logger}
}

// Assign computes a role and word for every player of room. It does not
// modify room; the caller persists the result.
//
// With a non-blank custom word the host authored the word, so it watches as a
// spectator. Everyone else is shuffled; the first ImpostorCount players become
// impostors and get no word, the rest are crewmates sharing the word.
func (a *RoleAssigner) Assign(room *models.Room, theme models.Theme) []models.Assignment {
	word := a.resolveWord(room.ID, theme)

	assignments := make([]models.Assignment, 0, len(room.Players))
	pool := make([]string, 0, len(room.Players))

	custom, isCustom := theme.(models.CustomTheme)
	spectatorHost := isCustom && custom.HasWord()
	for _, p := range room.Players {
		if spectatorHost && p.IsHost {
			assignments = append(assignments, models.Assignment{
				PlayerID: p.ID,
				Role:     models.RoleSpectator,
				Word:     stringPtr(word),
			})
			continue
		}
		pool = append(pool, p.ID)
	}

	a.shuffle(pool)

	for i, id := range pool {
		if i < room.ImpostorCount {
			assignments = append(assignments, models.Assignment{PlayerID: id, Role: models.RoleImpostor})
			continue
		}
		assignments = append(assignments, models.Assignment{
			PlayerID: id,
			Role:     models.RoleCrewmate,
			Word:     stringPtr(word),
		})
	}
	return assignments
}

func (a *RoleAssigner) resolveWord(roomID string, theme models.Theme) string {
	switch t := theme.(type) {
	case models.CustomTheme:
		return t.Word
	case models.PredefinedTheme:
		words, ok := a.catalog.Lookup(t.Key)
		if !ok {
			var fallback string
			fallback, words = a.catalog.Default()
			a.logger.Warn().
				Str("room_id", roomID).
				Str("theme", t.Key).
				Str("fallback", fallback).
				Msg("unknown predefined theme")
		}
		return words[a.rng.IntN(len(words))]
	default:
		panic("services: unhandled theme type")
	}
}

// shuffle is a Fisher-Yates shuffle: every permutation is equally likely.
func (a *RoleAssigner) shuffle(ids []string) {
	for i := len(ids) - 1; i > 0; i-- {
		j := a.rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func stringPtr(s string) *string {
	return &s
}
