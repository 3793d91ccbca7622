package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"git.lost.host/meutraa/cadence/internal/game"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Logger
	now    func() time.Time
}

func NewSQLiteStore(logger *logrus.Logger) *SQLiteStore {
	return &SQLiteStore{logger: logger, now: time.Now}
}

type InputsCompact struct {
	Index    int
	Times    []time.Duration
	Releases []time.Duration `json:",omitempty"`
}

func compactInputs(inputs []game.Input) []InputsCompact {
	colCount := 0
	for _, i := range inputs {
		if i.Index >= colCount {
			colCount = i.Index + 1
		}
	}
	ins := make([]InputsCompact, colCount)
	for c := range ins {
		ins[c] = InputsCompact{Index: c, Times: []time.Duration{}}
	}
	for _, i := range inputs {
		if i.Release {
			ins[i.Index].Releases = append(ins[i.Index].Releases, i.HitTime)
		} else {
			ins[i.Index].Times = append(ins[i.Index].Times, i.HitTime)
		}
	}
	return ins
}

// uncompactInputs restores the column-major form to a single stream
// ordered by time.
func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		ins = append(ins, interleave(i)...)
	}
	sortInputs(ins)
	return ins
}

func (s *SQLiteStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("unable to open score database %s: %w", path, err)
	}

	initStatement := `
	create table if not exists scores 
	  (
		  id integer not null primary key, 
		  sum text,
		  played_at integer,
		  result text,
		  inputs bytearray
	  );
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create scores table: %w", err)
	}

	s.db = db
	s.logger.WithField("path", path).Debug("Score database opened")
	return nil
}

func (s *SQLiteStore) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

func hashChart(c *game.Chart) string {
	sum := sha256.Sum256([]byte(c.Difficulty.Section))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *SQLiteStore) Save(c *game.Chart, inputs []game.Input, result Snapshot) error {
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	res, err := json.Marshal(result)
	if nil != err {
		return fmt.Errorf("unable to marshal result: %w", err)
	}
	_, err = s.db.Exec(
		"insert into scores(sum, played_at, result, inputs) values(?, ?, ?, ?)",
		hashChart(c), s.now().UnixMilli(), string(res), data,
	)
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"chart":    c.Difficulty.Name,
		"score":    result.Score,
		"accuracy": result.Accuracy(),
		"inputs":   len(inputs),
	}).Info("Score saved")
	return nil
}

func (s *SQLiteStore) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	rows, err := s.db.Query("select sum, played_at, result, inputs from scores where sum = ? order by played_at, id", hashChart(c))
	if nil != err {
		return histories, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sum, result string
		var playedAt int64
		var inputs []byte
		if err := rows.Scan(&sum, &playedAt, &result, &inputs); nil != err {
			return histories, fmt.Errorf("unable to scan score row: %w", err)
		}
		h := History{Sum: sum, PlayedAt: time.UnixMilli(playedAt)}
		var ns []InputsCompact
		if err := json.Unmarshal(inputs, &ns); nil != err {
			s.logger.WithError(err).Warn("Unable to unmarshal input history")
			continue
		}
		if err := json.Unmarshal([]byte(result), &h.Result); nil != err {
			s.logger.WithError(err).Warn("Unable to unmarshal result")
			continue
		}
		h.Inputs = uncompactInputs(ns)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
