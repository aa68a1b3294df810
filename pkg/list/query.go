package list

import (
	"fmt"
	"net/url"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/query"
)

// ItemOptions filter a list's items.
type ItemOptions struct {
	State  ItemState // zero value means both states
	Limit  int
	Offset int
}

// SQL renders the item filters; items always come back in sort order.
func (o ItemOptions) SQL(listID string, start int) (string, []any) {
	var b query.Builder
	b.Where("list_id = ?", listID)
	if o.State != "" {
		b.Where("state = ?", string(o.State))
	}
	b.Order("sort_order", false, "sort_order")
	b.Limit(o.Limit)
	b.Offset(o.Offset)
	return b.Build(start)
}

// ContainingOptions filter the lists-containing-object query by owner.
type ContainingOptions struct {
	OnlyOwners   []fingerprint.Fingerprint
	ExceptOwners []fingerprint.Fingerprint
	Limit        int
	Offset       int
}

// SQL renders the containing filters against the lists table, given that
// the items table is joined as i and lists as l.
func (o ContainingOptions) SQL(object fingerprint.Fingerprint, start int) (string, []any) {
	var b query.Builder
	b.Where("i.object = ?", object.String())
	b.OnlyExcept("l.owner", fingerprint.Strings(o.OnlyOwners), fingerprint.Strings(o.ExceptOwners))
	b.Order("l.created_at", false, "l.created_at")
	b.Limit(o.Limit)
	b.Offset(o.Offset)
	return b.Build(start)
}

// ParseItemOptions reads item filters from URL query parameters.
func ParseItemOptions(q url.Values) (ItemOptions, error) {
	var opts ItemOptions
	if raw := q.Get("state"); raw != "" {
		state := ItemState(raw)
		if !state.Valid() {
			return ItemOptions{}, fmt.Errorf("%w: %q", ErrInvalidState, raw)
		}
		opts.State = state
	}
	return opts, nil
}

// ParseContainingOptions reads owner filters from URL query parameters.
func ParseContainingOptions(q url.Values) (ContainingOptions, error) {
	var opts ContainingOptions
	var err error
	if opts.OnlyOwners, err = parseFingerprints(q, "only_owners"); err != nil {
		return ContainingOptions{}, err
	}
	if opts.ExceptOwners, err = parseFingerprints(q, "except_owners"); err != nil {
		return ContainingOptions{}, err
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
