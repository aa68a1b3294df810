package attachment

import (
	"net/url"
	"strings"
	"time"

	"github.com/trelliskit/trellis/internal/httpx"
	"github.com/trelliskit/trellis/pkg/fingerprint"
	"github.com/trelliskit/trellis/pkg/query"
)

var orderColumns = []string{"created_at", "updated_at", "size", "filename"}

// ListOptions filter attachment listings. Type filters accept exact MIME
// types or "family/*" globs; Only filters are OR-ed, Except filters are
// negated as a group.
type ListOptions struct {
	Attachable    fingerprint.Fingerprint
	OnlyAuthors   []fingerprint.Fingerprint
	ExceptAuthors []fingerprint.Fingerprint
	OnlyTypes     []string
	ExceptTypes   []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	OrderBy       string
	Desc          bool
	Limit         int
	Offset        int
}

// SQL renders the options as a WHERE/ORDER/LIMIT fragment.
func (o ListOptions) SQL(start int) (string, []any) {
	return o.builder(true).Build(start)
}

// CountSQL renders only the filters, for COUNT queries.
func (o ListOptions) CountSQL(start int) (string, []any) {
	return o.builder(false).BuildWhere(start)
}

func (o ListOptions) builder(ordered bool) *query.Builder {
	var b query.Builder
	if o.Attachable != "" {
		b.Where("attachable = ?", o.Attachable.String())
	}
	b.OnlyExcept("author", fingerprint.Strings(o.OnlyAuthors), fingerprint.Strings(o.ExceptAuthors))

	if expr, args := typeGroup(o.OnlyTypes, false); expr != "" {
		b.Where(expr, args...)
	}
	if expr, args := typeGroup(o.ExceptTypes, true); expr != "" {
		b.Where(expr, args...)
	}

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

// typeGroup builds "(content_type = ? OR content_type LIKE ?)" from a mix
// of exact types and globs, optionally negated.
func typeGroup(types []string, negate bool) (string, []any) {
	if len(types) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(types))
	args := make([]any, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if family, ok := strings.CutSuffix(t, "/*"); ok {
			conds = append(conds, "content_type LIKE ?")
			args = append(args, family+"/%")
			continue
		}
		conds = append(conds, "content_type = ?")
		args = append(args, t)
	}

	expr := "(" + strings.Join(conds, " OR ") + ")"
	if negate {
		expr = "NOT " + expr
	}
	return expr, args
}

// ParseListOptions reads listing filters from query parameters:
// attachable, only_authors/except_authors (CSV fingerprints),
// only_types/except_types (CSV MIME types or globs), time-range filters
// (RFC 3339), and order ("-" prefix for descending).
func ParseListOptions(values url.Values) (ListOptions, error) {
	var opts ListOptions

	if raw := values.Get("attachable"); raw != "" {
		fp, err := fingerprint.Parse(raw)
		if err != nil {
			return opts, err
		}
		opts.Attachable = fp
	}

	var err error
	if opts.OnlyAuthors, err = parseFingerprints(values, "only_authors"); err != nil {
		return opts, err
	}
	if opts.ExceptAuthors, err = parseFingerprints(values, "except_authors"); err != nil {
		return opts, err
	}

	opts.OnlyTypes = httpx.QueryList(values, "only_types")
	opts.ExceptTypes = httpx.QueryList(values, "except_types")

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
