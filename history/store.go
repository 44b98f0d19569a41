// Package history persists shell command history and game high scores.
package history

import (
	"errors"
	"slices"
	"sync"
)

// ErrNoScore is returned for a game that was never finished
var ErrNoScore = errors.New("no score recorded")

// Cmd is one history entry
type Cmd struct {
	Seq  int
	Text string
}

// Score is the record of one game
type Score struct {
	Game  string
	Best  int
	Plays int
}

// Store is the persistence used by the console and the shell
type Store interface {
	AddCmd(text string) (int, error)
	// Cmds returns up to limit most recent commands, oldest first
	Cmds(limit int) ([]Cmd, error)
	// RecordScore counts a play and keeps the best score; reports a new best
	RecordScore(game string, score int) (Score, bool, error)
	Score(game string) (Score, error)
	Scores() ([]Score, error)
	Close() error
}

// MemStore is a Store without persistence, used when no database is configured
type MemStore struct {
	mu     sync.Mutex
	cmds   []Cmd
	scores map[string]Score
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{scores: make(map[string]Score)}
}

func (m *MemStore) AddCmd(text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := len(m.cmds) + 1
	m.cmds = append(m.cmds, Cmd{Seq: seq, Text: text})
	return seq, nil
}

func (m *MemStore) Cmds(limit int) ([]Cmd, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from := 0
	if limit > 0 && len(m.cmds) > limit {
		from = len(m.cmds) - limit
	}
	return slices.Clone(m.cmds[from:]), nil
}

func (m *MemStore) RecordScore(game string, score int) (Score, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.scores[game]
	s.Game = game
	s.Plays++
	better := s.Plays == 1 || score > s.Best
	if better {
		s.Best = score
	}
	m.scores[game] = s
	return s, better, nil
}

func (m *MemStore) Score(game string) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[game]
	if !ok {
		return Score{}, ErrNoScore
	}
	return s, nil
}

func (m *MemStore) Scores() ([]Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Score, 0, len(m.scores))
	for _, s := range m.scores {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Score) int {
		switch {
		case a.Game < b.Game:
			return -1
		case a.Game > b.Game:
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *MemStore) Close() error { return nil }
