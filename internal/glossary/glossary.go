// Package glossary holds the user's ordered list of terminology overrides.
package glossary

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrTermNotFound is returned when an operation names an unknown term ID.
var ErrTermNotFound = errors.New("glossary term not found")

// Field selects which side of a term Update modifies.
type Field string

const (
	FieldSource Field = "source"
	FieldTarget Field = "target"
)

// DefaultPlaceholders is the number of empty rows a fresh glossary starts with.
const DefaultPlaceholders = 3

// Term maps a source-language term to the exact target-language rendering.
type Term struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Active reports whether both sides are filled in.
func (t Term) Active() bool {
	return strings.TrimSpace(t.Source) != "" && strings.TrimSpace(t.Target) != ""
}

// Glossary is an insertion-ordered list of terms. It is safe for concurrent use.
type Glossary struct {
	mu    sync.RWMutex
	terms []Term
}

// New returns a glossary seeded with n empty placeholder rows.
func New(n int) *Glossary {
	g := &Glossary{}
	for i := 0; i < n; i++ {
		g.terms = append(g.terms, Term{ID: uuid.NewString()})
	}
	return g
}

// Add appends an empty placeholder term and returns it.
func (g *Glossary) Add() Term {
	t := Term{ID: uuid.NewString()}
	g.mu.Lock()
	g.terms = append(g.terms, t)
	g.mu.Unlock()
	return t
}

// Update sets one side of the term with the given ID.
func (g *Glossary) Update(id string, field Field, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.terms {
		if g.terms[i].ID != id {
			continue
		}
		switch field {
		case FieldSource:
			g.terms[i].Source = value
		case FieldTarget:
			g.terms[i].Target = value
		default:
			return errors.New("unknown glossary field: " + string(field))
		}
		return nil
	}
	return ErrTermNotFound
}

// Remove deletes the term with the given ID, preserving the order of the rest.
func (g *Glossary) Remove(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.terms {
		if g.terms[i].ID == id {
			g.terms = append(g.terms[:i], g.terms[i+1:]...)
			return nil
		}
	}
	return ErrTermNotFound
}

// Replace swaps the whole list, e.g. after loading a saved glossary. Terms
// without an ID are given one.
func (g *Glossary) Replace(terms []Term) {
	out := make([]Term, len(terms))
	for i, t := range terms {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out[i] = t
	}
	g.mu.Lock()
	g.terms = out
	g.mu.Unlock()
}

// Terms returns a copy of every term, placeholders included.
func (g *Glossary) Terms() []Term {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Term(nil), g.terms...)
}

// Active returns the filled-in terms in insertion order.
func (g *Glossary) Active() []Term {
	return ActiveTerms(g.Terms())
}

// ActiveCount is the number of terms that will be sent to the translator.
func (g *Glossary) ActiveCount() int {
	return len(g.Active())
}

// ActiveTerms filters terms down to the active ones, keeping their order.
func ActiveTerms(terms []Term) []Term {
	var out []Term
	for _, t := range terms {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out
}
