package comment

import (
	"net/url"
	"time"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/query"
)

// orderColumns are the columns listings may sort by.
var orderColumns = []string{"created_at", "updated_at"}

// ListOptions filter comment listings. When both OnlyAuthors and
// ExceptAuthors are set, the exclusions are subtracted from the
// inclusions.
type ListOptions struct {
	Commentable   fingerprint.Fingerprint
	OnlyAuthors   []fingerprint.Fingerprint
	ExceptAuthors []fingerprint.Fingerprint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	OrderBy       string // created_at or updated_at; default created_at
	Desc          bool
	Limit         int
	Offset        int
}

// SQL renders the options as a WHERE/ORDER/LIMIT fragment with positional
// arguments starting at $start.
func (o ListOptions) SQL(start int) (string, []any) {
	return o.builder(true).Build(start)
}

// CountSQL renders only the filters, for COUNT queries.
func (o ListOptions) CountSQL(start int) (string, []any) {
	return o.builder(false).BuildWhere(start)
}

func (o ListOptions) builder(ordered bool) *query.Builder {
	var b query.Builder
	if o.Commentable != "" {
		b.Where("commentable = ?", o.Commentable.String())
	}
	b.OnlyExcept("author", fingerprint.Strings(o.OnlyAuthors), fingerprint.Strings(o.ExceptAuthors))
	if o.CreatedAfter != nil {
		b.Where("created_at > ?", *o.CreatedAfter)
	}
	if o.CreatedBefore != nil {
		b.Where("created_at < ?", *o.CreatedBefore)
	}
	if o.UpdatedAfter != nil {
		b.Where("updated_at > ?", *o.UpdatedAfter)
	}
	if o.UpdatedBefore != nil {
		b.Where("updated_at < ?", *o.UpdatedBefore)
	}

	if ordered {
		col := o.OrderBy
		if col == "" {
			col = "created_at"
		}
		b.Order(col, o.Desc, orderColumns...)
		b.Limit(o.Limit)
		b.Offset(o.Offset)
	}
	return &b
}

// ParseListOptions reads listing filters from query parameters:
// commentable, only_authors, except_authors (CSV fingerprints),
// created_after/_before, updated_after/_before (RFC 3339), and order
// (column name, "-" prefix for descending).
func ParseListOptions(values url.Values) (ListOptions, error) {
	var opts ListOptions

	if raw := values.Get("commentable"); raw != "" {
		fp, err := fingerprint.Parse(raw)
		if err != nil {
			return opts, err
		}
		opts.Commentable = fp
	}

	var err error
	if opts.OnlyAuthors, err = parseFingerprints(values, "only_authors"); err != nil {
		return opts, err
	}
	if opts.ExceptAuthors, err = parseFingerprints(values, "except_authors"); err != nil {
		return opts, err
	}

	if opts.CreatedAfter, err = queryTimePtr(values, "created_after"); err != nil {
		return opts, err
	}
	if opts.CreatedBefore, err = queryTimePtr(values, "created_before"); err != nil {
		return opts, err
	}
	if opts.UpdatedAfter, err = queryTimePtr(values, "updated_after"); err != nil {
		return opts, err
	}
	if opts.UpdatedBefore, err = queryTimePtr(values, "updated_before"); err != nil {
		return opts, err
	}

	if order := values.Get("order"); order != "" {
		if order[0] == '-' {
			opts.Desc = true
			order = order[1:]
		}
		opts.OrderBy = order
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

func queryTimePtr(values url.Values, key string) (*time.Time, error) {
	t, ok, err := httpx.QueryTime(values, key)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}
