// Package cart owns the ordered line list of the active bill.
//
// Every operation is synchronous over a *models.BillSession and never fails:
// unknown identities and invalid input are no-ops. After each call that
// changes the session, the full resulting line list is pushed to a Syncer.
package cart

import (
	"github.com/mmynk/tillpoint/internal/identity"
	"github.com/mmynk/tillpoint/internal/models"
)

// Syncer receives the full line list after every mutation.
// Push must not block on the network.
type Syncer interface {
	Push(snapshot models.CartSnapshot)
}

// Engine applies cart operations to a bill session.
type Engine struct {
	syncer Syncer
}

// New creates an Engine that pushes snapshots to syncer. A nil syncer disables sync.
func New(syncer Syncer) *Engine {
	return &Engine{syncer: syncer}
}

func (e *Engine) push(s *models.BillSession) {
	if e.syncer == nil {
		return
	}
	e.syncer.Push(s.Snapshot())
}

// Add increments the quantity of the line with item's identity, or appends a
// new line with quantity 1. Existing line order is preserved.
func (e *Engine) Add(s *models.BillSession, item models.LineItem) {
	id := identity.Coerce(item.ID)
	if id == "" {
		return
	}
	if i := s.Find(id); i >= 0 {
		s.Lines[i].Quantity++
	} else {
		item.ID = id
		item.Quantity = 1
		item.Voided = false
		s.Lines = append(s.Lines, item)
	}
	e.push(s)
}

// Remove deletes the line with the given identity.
func (e *Engine) Remove(s *models.BillSession, id string) {
	i := s.Find(identity.Coerce(id))
	if i < 0 {
		return
	}
	if s.Selected == s.Lines[i].ID {
		s.Selected = ""
	}
	s.Lines = append(s.Lines[:i:i], s.Lines[i+1:]...)
	e.push(s)
}

// SetQuantity clamps qty at zero; zero removes the line, anything else updates
// the quantity in place.
func (e *Engine) SetQuantity(s *models.BillSession, id string, qty int64) {
	if qty <= 0 {
		e.Remove(s, id)
		return
	}
	i := s.Find(identity.Coerce(id))
	if i < 0 {
		return
	}
	s.Lines[i].Quantity = qty
	e.push(s)
}

// Select points the session's selection at the line with the given identity.
// Selecting an unknown identity leaves the selection unchanged.
func (e *Engine) Select(s *models.BillSession, id string) bool {
	i := s.Find(identity.Coerce(id))
	if i < 0 {
		return false
	}
	s.Selected = s.Lines[i].ID
	return true
}

// VoidSelected flags the selected line as voided and consumes the selection.
// Without a selection, or when the line is already void, nothing happens.
func (e *Engine) VoidSelected(s *models.BillSession) {
	if s.Selected == "" {
		return
	}
	i := s.Find(s.Selected)
	s.Selected = ""
	if i < 0 || s.Lines[i].Voided {
		return
	}
	s.Lines[i].Voided = true
	e.push(s)
}

// Clear empties the line list and drops the selection.
func (e *Engine) Clear(s *models.BillSession) {
	s.Lines = []models.LineItem{}
	s.Selected = ""
	e.push(s)
}

// Sync pushes the session's current lines without changing them, e.g. after a
// held bill replaced the session.
func (e *Engine) Sync(s *models.BillSession) {
	e.push(s)
}
