package model

import (
	"time"
)

// Step is a named position in the order or support conversation flow.
type Step string

const (
	StepMenu              Step = "menu"
	StepOrderSubject      Step = "order_subject"
	StepOrderLevel        Step = "order_level"
	StepOrderPages        Step = "order_pages"
	StepOrderDeadline     Step = "order_deadline"
	StepOrderInstructions Step = "order_instructions"
	StepOrderFiles        Step = "order_files"
	StepSupport           Step = "support"
)

const (
	MinPages = 1
	MaxPages = 50
)

// Attachment describes one file the user uploaded during the order flow.
// FileRef is the transport-side file identifier; the bytes themselves never
// pass through this process.
type Attachment struct {
	FileRef    string
	FileName   string
	SizeBytes  int64
	UploadedAt time.Time
}

// OrderData accumulates the order fields across conversation turns.
// FinalPrice is set exactly once, when the deadline is selected, and is
// never recomputed afterward.
type OrderData struct {
	Subject      string
	Level        string
	Pages        int
	Deadline     string
	Instructions string
	FinalPrice   float64
}

// OrderPatch is a partial update of OrderData. Nil pointers mean "no change".
type OrderPatch struct {
	Subject      *string
	Level        *string
	Pages        *int
	Deadline     *string
	Instructions *string
	FinalPrice   *float64
}

// Apply merges the non-nil patch fields into the order data.
func (d *OrderData) Apply(p *OrderPatch) {
	if p == nil {
		return
	}
	if p.Subject != nil {
		d.Subject = *p.Subject
	}
	if p.Level != nil {
		d.Level = *p.Level
	}
	if p.Pages != nil {
		d.Pages = *p.Pages
	}
	if p.Deadline != nil {
		d.Deadline = *p.Deadline
	}
	if p.Instructions != nil {
		d.Instructions = *p.Instructions
	}
	if p.FinalPrice != nil {
		d.FinalPrice = *p.FinalPrice
	}
}

// Session is the per-user transient record of conversation progress.
// At most one session exists per user at any time.
type Session struct {
	UserID         int64
	Step           Step
	Data           OrderData
	Files          []Attachment
	CreatedAt      time.Time
	LastActivityAt time.Time
}

func NewSession(userID int64, step Step, now time.Time) *Session {
	return &Session{
		UserID:         userID,
		Step:           step,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Clone returns a snapshot copy that is safe to read outside the store lock.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Files = make([]Attachment, len(s.Files))
	copy(cp.Files, s.Files)
	return &cp
}

// IdleSince reports how long the session has been inactive.
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}
