package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run identifies one forward-engine traversal persisted to the store.
type Run struct {
	ID        string
	GraphHash string
	BurnIn    int64
	EndTime   int64
	NumDemes  int
	CreatedAt time.Time
}

// BeginRun inserts a new run row and returns its generated ID.
func (s *Store) BeginRun(graphHash string, burnIn, endTime int64, numDemes int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, graph_hash, burn_in, end_time, num_demes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, graphHash, burnIn, endTime, numDemes, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("store: begin run: %w", err)
	}
	return id, nil
}

// RecordGeneration persists one generation's parental/offspring deme sizes.
// offspring may be nil (the final generation has none).
func (s *Store) RecordGeneration(runID string, t int64, parental, offspring []float64) error {
	pj, err := json.Marshal(parental)
	if err != nil {
		return fmt.Errorf("store: marshal parental sizes: %w", err)
	}
	var oj []byte
	if offspring != nil {
		oj, err = json.Marshal(offspring)
		if err != nil {
			return fmt.Errorf("store: marshal offspring sizes: %w", err)
		}
	}
	_, err = s.db.Exec(
		`INSERT INTO generations (run_id, t, parental_sizes, offspring_sizes) VALUES (?, ?, ?, ?)`,
		runID, t, string(pj), nullableString(oj),
	)
	if err != nil {
		return fmt.Errorf("store: record generation: %w", err)
	}
	return nil
}

// RecordAncestry persists one child deme's ancestry-proportion vector for
// the t -> t+1 transition.
func (s *Store) RecordAncestry(runID string, t int64, childDeme int, proportions []float64) error {
	pj, err := json.Marshal(proportions)
	if err != nil {
		return fmt.Errorf("store: marshal proportions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO ancestry (run_id, t, child_deme, proportions) VALUES (?, ?, ?, ?)`,
		runID, t, childDeme, string(pj),
	)
	if err != nil {
		return fmt.Errorf("store: record ancestry: %w", err)
	}
	return nil
}

func nullableString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

// GenerationRecord is one row read back from the generations table.
type GenerationRecord struct {
	T         int64
	Parental  []float64
	Offspring []float64
}

// ReadRun replays every generation recorded for runID, in time order.
func (s *Store) ReadRun(runID string) ([]GenerationRecord, error) {
	rows, err := s.db.Query(
		`SELECT t, parental_sizes, offspring_sizes FROM generations WHERE run_id = ? ORDER BY t ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: read run: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var pj string
		var oj *string
		if err := rows.Scan(&rec.T, &pj, &oj); err != nil {
			return nil, fmt.Errorf("store: scan generation row: %w", err)
		}
		if err := json.Unmarshal([]byte(pj), &rec.Parental); err != nil {
			return nil, fmt.Errorf("store: unmarshal parental sizes: %w", err)
		}
		if oj != nil {
			if err := json.Unmarshal([]byte(*oj), &rec.Offspring); err != nil {
				return nil, fmt.Errorf("store: unmarshal offspring sizes: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
