package actorgroup

import (
	"strings"
	"time"

	"github.com/trelliskit/trellis/pkg/fingerprint"
)

// FingerprintType is the type segment of group fingerprints.
const FingerprintType = "ActorGroup"

// Group is a named collection of actors owned by another actor.
type Group struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Note      string                  `json:"note,omitempty"`
	Owner     fingerprint.Fingerprint `json:"owner"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Fingerprint returns the group's own fingerprint.
func (g *Group) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Make(FingerprintType, g.ID)
}

// Member records one actor's membership in a group.
type Member struct {
	ID        string                  `json:"id"`
	GroupID   string                  `json:"group_id"`
	Actor     fingerprint.Fingerprint `json:"actor"`
	Title     string                  `json:"title,omitempty"`
	Note      string                  `json:"note,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// NormalizeName collapses interior whitespace and lowercases the name.
// Uniqueness is enforced on the normalized form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
