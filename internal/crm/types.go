package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidInput = errors.New("crm: invalid input")

// Contact is a person or company record in the book of business.
type Contact struct {
	Meta
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

func (c *Contact) Validate() error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if c.FirstName == "" && c.LastName == "" {
		return fmt.Errorf("%w: contact name is required", ErrInvalidInput)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

// Deal is one pipeline opportunity.
type Deal struct {
	Meta
	Title         string     `json:"title"`
	Stage         string     `json:"stage"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	ContactID     string     `json:"contact_id,omitempty"`
	ExpectedClose *time.Time `json:"expected_close,omitempty"`
}

var dealStages = map[string]struct{}{
	"lead": {}, "qualified": {}, "proposal": {}, "negotiation": {}, "won": {}, "lost": {},
}

func (d *Deal) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Stage = strings.TrimSpace(strings.ToLower(d.Stage))
	d.Currency = strings.TrimSpace(strings.ToUpper(d.Currency))
	if d.Title == "" {
		return fmt.Errorf("%w: deal title is required", ErrInvalidInput)
	}
	if d.Stage == "" {
		d.Stage = "lead"
	}
	if _, ok := dealStages[d.Stage]; !ok {
		return fmt.Errorf("%w: unsupported stage %s", ErrInvalidInput, d.Stage)
	}
	if d.AmountCents < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if d.AmountCents > 0 && d.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}
	return nil
}

// Activity is a call, meeting or task attached to a contact or deal.
type Activity struct {
	Meta
	Kind        string     `json:"kind"`
	Subject     string     `json:"subject"`
	Notes       string     `json:"notes,omitempty"`
	ContactID   string     `json:"contact_id,omitempty"`
	DealID      string     `json:"deal_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

var activityKinds = map[string]struct{}{"call": {}, "meeting": {}, "task": {}, "note": {}}

func (a *Activity) Validate() error {
	a.Kind = strings.TrimSpace(strings.ToLower(a.Kind))
	a.Subject = strings.TrimSpace(a.Subject)
	if _, ok := activityKinds[a.Kind]; !ok {
		return fmt.Errorf("%w: unsupported activity kind %s", ErrInvalidInput, a.Kind)
	}
	if a.Subject == "" {
		return fmt.Errorf("%w: activity subject is required", ErrInvalidInput)
	}
	return nil
}

// Communication is a logged inbound or outbound message. Delivery itself is
// handled by external integrations; only the record is kept here.
type Communication struct {
	Meta
	Channel    string    `json:"channel"`
	Direction  string    `json:"direction"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body,omitempty"`
	ContactID  string    `json:"contact_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

var commChannels = map[string]struct{}{"email": {}, "sms": {}, "voice": {}}

func (c *Communication) Validate() error {
	c.Channel = strings.TrimSpace(strings.ToLower(c.Channel))
	c.Direction = strings.TrimSpace(strings.ToLower(c.Direction))
	if _, ok := commChannels[c.Channel]; !ok {
		return fmt.Errorf("%w: unsupported channel %s", ErrInvalidInput, c.Channel)
	}
	if c.Direction != "inbound" && c.Direction != "outbound" {
		return fmt.Errorf("%w: direction must be inbound or outbound", ErrInvalidInput)
	}
	if c.OccurredAt.IsZero() {
		c.OccurredAt = time.Now().UTC()
	}
	return nil
}

// Document is file metadata; the payload lives in external storage under
// StorageKey.
type Document struct {
	Meta
	Title      string `json:"title"`
	MimeType   string `json:"mime_type,omitempty"`
	StorageKey string `json:"storage_key"`
	SizeBytes  int64  `json:"size_bytes"`
	DealID     string `json:"deal_id,omitempty"`
}

func (d *Document) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.StorageKey = strings.TrimSpace(d.StorageKey)
	if d.Title == "" {
		return fmt.Errorf("%w: document title is required", ErrInvalidInput)
	}
	if d.StorageKey == "" {
		return fmt.Errorf("%w: storage key is required", ErrInvalidInput)
	}
	if d.SizeBytes < 0 {
		return fmt.Errorf("%w: size must not be negative", ErrInvalidInput)
	}
	return nil
}

// Workflow is a company-wide automation definition. The definition payload is
// opaque to this layer.
type Workflow struct {
	Meta
	Name         string          `json:"name"`
	TriggerEvent string          `json:"trigger_event"`
	Definition   json.RawMessage `json:"definition,omitempty"`
	Enabled      bool            `json:"enabled"`
}

func (w *Workflow) Validate() error {
	w.Name = strings.TrimSpace(w.Name)
	w.TriggerEvent = strings.TrimSpace(w.TriggerEvent)
	if w.Name == "" {
		return fmt.Errorf("%w: workflow name is required", ErrInvalidInput)
	}
	if w.TriggerEvent == "" {
		return fmt.Errorf("%w: trigger event is required", ErrInvalidInput)
	}
	return nil
}
