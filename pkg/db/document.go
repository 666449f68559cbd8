package db

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Submission is a pending payment claim awaiting the administrator decision.
// Points is fixed from the catalog at creation time and is never recomputed.
type Submission struct {
	ID       string `json:"id"`
	UserID   int64  `json:"user"`
	Username string `json:"username,omitempty"`
	Amount   string `json:"amount"`
	TimeSent string `json:"time"`
	Availed  string `json:"availed"`
	Points   int64  `json:"points"`
}

// Document is the whole durable state. Ledger keys are decimal user ids.
type Document struct {
	Points  map[string]int64       `json:"points"`
	Pending map[string]*Submission `json:"pending"`
}

// NewDocument returns an empty document with initialized collections.
func NewDocument() *Document {
	return &Document{
		Points:  make(map[string]int64),
		Pending: make(map[string]*Submission),
	}
}

// decodeDocument parses data and fills the gaps left by older files:
// nil collections and records stored without their own id.
func decodeDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return NewDocument(), fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if doc.Points == nil {
		doc.Points = make(map[string]int64)
	}
	if doc.Pending == nil {
		doc.Pending = make(map[string]*Submission)
	}

	for id, s := range doc.Pending {
		if s == nil {
			delete(doc.Pending, id)
			continue
		}
		s.ID = id
	}

	return doc, nil
}

func encodeDocument(doc *Document) ([]byte, error) {
	if doc == nil {
		doc = NewDocument()
	}
	return json.Marshal(doc)
}

// LedgerKey is the ledger map key for a user.
func LedgerKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
