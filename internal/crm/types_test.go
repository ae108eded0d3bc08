package crm

import (
	"errors"
	"testing"
	"time"
)

func TestContactValidate(t *testing.T) {
	c := &Contact{FirstName: "  Ada ", Email: " Ada@Example.COM "}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.FirstName != "Ada" || c.Email != "ada@example.com" {
		t.Fatalf("normalization failed: %q %q", c.FirstName, c.Email)
	}

	if err := (&Contact{}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nameless contact: %v", err)
	}
	if err := (&Contact{FirstName: "Ada", Email: "not-an-email"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad email: %v", err)
	}
}

func TestDealValidate(t *testing.T) {
	d := &Deal{Title: "Big deal", Stage: " QUALIFIED ", AmountCents: 1000, Currency: "usd"}
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if d.Stage != "qualified" || d.Currency != "USD" {
		t.Fatalf("normalization failed: %q %q", d.Stage, d.Currency)
	}

	d = &Deal{Title: "Fresh"}
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if d.Stage != "lead" {
		t.Fatalf("default stage = %q", d.Stage)
	}

	cases := []*Deal{
		{Stage: "lead"},                                  // no title
		{Title: "x", Stage: "imagined"},                  // unknown stage
		{Title: "x", AmountCents: -5, Currency: "USD"},   // negative amount
		{Title: "x", AmountCents: 100},                   // amount without currency
	}
	for i, bad := range cases {
		if err := bad.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: %v", i, err)
		}
	}
}

func TestActivityValidate(t *testing.T) {
	a := &Activity{Kind: " Call ", Subject: "Intro"}
	if err := a.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if a.Kind != "call" {
		t.Fatalf("kind = %q", a.Kind)
	}
	if err := (&Activity{Kind: "party", Subject: "x"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("unknown kind accepted")
	}
	if err := (&Activity{Kind: "call"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("empty subject accepted")
	}
}

func TestCommunicationValidate(t *testing.T) {
	c := &Communication{Channel: "EMAIL", Direction: "Outbound"}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.OccurredAt.IsZero() {
		t.Fatal("occurred_at should default to now")
	}

	if err := (&Communication{Channel: "fax", Direction: "outbound"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("unknown channel accepted")
	}
	if err := (&Communication{Channel: "sms", Direction: "sideways"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("bad direction accepted")
	}
}

func TestDocumentValidate(t *testing.T) {
	d := &Document{Title: "Quote", StorageKey: "s3://bucket/quote.pdf", SizeBytes: 42}
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (&Document{StorageKey: "k"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("untitled document accepted")
	}
	if err := (&Document{Title: "x"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("document without storage key accepted")
	}
	if err := (&Document{Title: "x", StorageKey: "k", SizeBytes: -1}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("negative size accepted")
	}
}

func TestWorkflowValidate(t *testing.T) {
	w := &Workflow{Name: " Onboarding ", TriggerEvent: "deal.won"}
	if err := w.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if w.Name != "Onboarding" {
		t.Fatalf("name = %q", w.Name)
	}
	if err := (&Workflow{TriggerEvent: "deal.won"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("unnamed workflow accepted")
	}
	if err := (&Workflow{Name: "x"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatal("workflow without trigger accepted")
	}
}

func TestMetaSoftDelete(t *testing.T) {
	var m Meta
	first := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	m.MarkDeleted(first)
	m.MarkDeleted(first.Add(time.Hour))
	if m.DeletedAt == nil || !m.DeletedAt.Equal(first) {
		t.Fatalf("deleted at = %v, want first mark to stick", m.DeletedAt)
	}
}
