package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/valpere/glosstran/internal/glossary"
)

// SaveGlossary replaces the saved glossary with terms, keeping their order.
// Placeholder rows are saved too so a reload shows the same editor rows.
func (s *Store) SaveGlossary(ctx context.Context, terms []glossary.Term) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM glossary`); err != nil {
		return fmt.Errorf("failed to clear glossary: %w", err)
	}
	for i, t := range terms {
		id := t.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO glossary (id, position, source_term, target_term) VALUES (?, ?, ?, ?)`,
			id, i, t.Source, t.Target); err != nil {
			return fmt.Errorf("failed to save term %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// LoadGlossary returns the saved glossary in order. An empty result means
// nothing was saved yet.
func (s *Store) LoadGlossary(ctx context.Context) ([]glossary.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_term, target_term FROM glossary ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []glossary.Term
	for rows.Next() {
		var t glossary.Term
		if err := rows.Scan(&t.ID, &t.Source, &t.Target); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// AddGlossaryTerm appends one pair to the saved glossary.
func (s *Store) AddGlossaryTerm(ctx context.Context, source, target string) (glossary.Term, error) {
	t := glossary.Term{ID: uuid.NewString(), Source: source, Target: target}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO glossary (id, position, source_term, target_term)
		 VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM glossary), ?, ?)`,
		t.ID, t.Source, t.Target)
	if err != nil {
		return glossary.Term{}, err
	}
	return t, nil
}

// DeleteGlossaryTerm removes a saved pair by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}
