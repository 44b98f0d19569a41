package history

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketCmd   = "cmd"
	bucketScore = "score"
)

// BoltStore keeps history in a bbolt file. Command keys are big-endian
// sequence numbers so cursor order is insertion order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketCmd, bucketScore} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// AddCmd appends a command and returns its sequence number
func (s *BoltStore) AddCmd(text string) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(text))
	})
	return int(seq), err
}

// Cmds walks backwards from the newest entry
func (s *BoltStore) Cmds(limit int) ([]Cmd, error) {
	var cmds []Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(cmds) == limit {
				break
			}
			cmds = append(cmds, Cmd{Seq: int(unmarshalSeq(k)), Text: string(v)})
		}
		return nil
	})
	for i, j := 0, len(cmds)-1; i < j; i, j = i+1, j-1 {
		cmds[i], cmds[j] = cmds[j], cmds[i]
	}
	return cmds, err
}

// RecordScore updates the per-game record in one transaction
func (s *BoltStore) RecordScore(game string, score int) (Score, bool, error) {
	var (
		rec    Score
		better bool
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketScore))
		rec = unmarshalScore(game, b.Get([]byte(game)))
		rec.Plays++
		better = rec.Plays == 1 || score > rec.Best
		if better {
			rec.Best = score
		}
		return b.Put([]byte(game), marshalScore(rec))
	})
	return rec, better, err
}

// Score returns the record of game
func (s *BoltStore) Score(game string) (Score, error) {
	var rec Score
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketScore)).Get([]byte(game))
		if v == nil {
			return ErrNoScore
		}
		rec = unmarshalScore(game, v)
		return nil
	})
	return rec, err
}

// Scores returns every record in game name order
func (s *BoltStore) Scores() ([]Score, error) {
	var out []Score
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketScore)).ForEach(func(k, v []byte) error {
			out = append(out, unmarshalScore(string(k), v))
			return nil
		})
	})
	return out, err
}

// Close releases the file lock
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

// score value: best (int64) then plays (uint64), big-endian
func marshalScore(s Score) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], uint64(int64(s.Best)))
	binary.BigEndian.PutUint64(b[8:], uint64(s.Plays))
	return b
}

func unmarshalScore(game string, v []byte) Score {
	s := Score{Game: game}
	if len(v) < 16 {
		return s
	}
	s.Best = int(int64(binary.BigEndian.Uint64(v[:8])))
	s.Plays = int(binary.BigEndian.Uint64(v[8:]))
	return s
}
