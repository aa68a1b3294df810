package actorgroup

import (
	"net/url"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/query"
)

// MemberOptions filter a group's member listing.
type MemberOptions struct {
	OnlyActors   []fingerprint.Fingerprint
	ExceptActors []fingerprint.Fingerprint
	Limit        int
	Offset       int
}

// SQL renders the member filters; members come back oldest first.
func (o MemberOptions) SQL(groupID string, start int) (string, []any) {
	var b query.Builder
	b.Where("group_id = ?", groupID)
	b.OnlyExcept("actor", fingerprint.Strings(o.OnlyActors), fingerprint.Strings(o.ExceptActors))
	b.Order("created_at", false, "created_at")
	b.Limit(o.Limit)
	b.Offset(o.Offset)
	return b.Build(start)
}

// GroupOptions filter the groups-for-actor listing by owner.
type GroupOptions struct {
	OnlyOwners   []fingerprint.Fingerprint
	ExceptOwners []fingerprint.Fingerprint
	Limit        int
	Offset       int
}

// SQL renders the group filters, given that members are joined as m and
// groups as g.
func (o GroupOptions) SQL(actor fingerprint.Fingerprint, start int) (string, []any) {
	var b query.Builder
	b.Where("m.actor = ?", actor.String())
	b.OnlyExcept("g.owner", fingerprint.Strings(o.OnlyOwners), fingerprint.Strings(o.ExceptOwners))
	b.Order("g.created_at", false, "g.created_at")
	b.Limit(o.Limit)
	b.Offset(o.Offset)
	return b.Build(start)
}

// ParseMemberOptions reads member filters from URL query parameters.
func ParseMemberOptions(q url.Values) (MemberOptions, error) {
	var opts MemberOptions
	var err error
	if opts.OnlyActors, err = parseFingerprints(q, "only_actors"); err != nil {
		return MemberOptions{}, err
	}
	if opts.ExceptActors, err = parseFingerprints(q, "except_actors"); err != nil {
		return MemberOptions{}, err
	}
	return opts, nil
}

// ParseGroupOptions reads owner filters from URL query parameters.
func ParseGroupOptions(q url.Values) (GroupOptions, error) {
	var opts GroupOptions
	var err error
	if opts.OnlyOwners, err = parseFingerprints(q, "only_owners"); err != nil {
		return GroupOptions{}, err
	}
	if opts.ExceptOwners, err = parseFingerprints(q, "except_owners"); err != nil {
		return GroupOptions{}, err
	}
	return opts, nil
}

func parseFingerprints(values url.Values, key string) ([]fingerprint.Fingerprint, error) {
	raw := httpx.QueryList(values, key)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]fingerprint.Fingerprint, 0, len(raw))
	for _, s := range raw {
		fp, err := fingerprint.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, fp)
	}
	return out, nil
}
