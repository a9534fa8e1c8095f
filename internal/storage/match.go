package storage

import (
	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/multiplayer"
	"github.com/vovakirdan/duotris/internal/replay"
)

// MatchSaver implements multiplayer.MatchResultSaver by journaling each
// finished online match as a replay. Config must be the one the server's
// game factory builds games with.
type MatchSaver struct {
	Store  *Store
	Config config.DuotrisConfig
}

var _ multiplayer.MatchResultSaver = MatchSaver{}

// SaveMatchResult stores the match under its match ID.
func (m MatchSaver) SaveMatchResult(data multiplayer.MatchResultData) error {
	return m.Store.SaveReplay(ReplayFromMatch(data, m.Config))
}

// ReplayFromMatch converts a match result into a replay.
func ReplayFromMatch(data multiplayer.MatchResultData, cfg config.DuotrisConfig) replay.Replay {
	inputs := make([]replay.Input, 0, len(data.Inputs))
	for _, in := range data.Inputs {
		inputs = append(inputs, replay.Input{Tick: in.Tick, Player: in.Player, Action: in.Action})
	}
	return replay.Replay{
		ID:       data.MatchID,
		GameID:   data.GameID,
		Seed:     data.Seed,
		Config:   cfg,
		Ticks:    data.Ticks,
		Score:    data.Score,
		Lines:    data.Lines,
		Locks:    data.Locks,
		GameOver: data.GameOver,
		Inputs:   inputs,
	}
}
