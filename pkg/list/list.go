package list

import (
	"time"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

// FingerprintType is the type segment of list fingerprints.
const FingerprintType = "List"

// ItemState marks whether a listed object is currently selected.
type ItemState string

const (
	StateSelected   ItemState = "selected"
	StateDeselected ItemState = "deselected"
)

// Valid reports whether the state is one of the two known values.
func (s ItemState) Valid() bool {
	return s == StateSelected || s == StateDeselected
}

// List is an ordered collection of objects owned by an actor.
type List struct {
	ID        string                  `json:"id"`
	Owner     fingerprint.Fingerprint `json:"owner"`
	Title     string                  `json:"title"`
	Caption   string                  `json:"caption,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Fingerprint returns the list's own fingerprint.
func (l *List) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Make(FingerprintType, l.ID)
}

// Item is one object's membership on a list. Name is optional but unique
// per list when set; SortOrder is dense within the list.
type Item struct {
	ID        string                  `json:"id"`
	ListID    string                  `json:"list_id"`
	Object    fingerprint.Fingerprint `json:"object"`
	Name      string                  `json:"name,omitempty"`
	State     ItemState               `json:"state"`
	SortOrder int                     `json:"sort_order"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}
