package query

import (
	"fmt"
	"slices"
	"strings"
)

// Builder accumulates conditions and emits a SQL fragment with $n
// placeholders. The zero value is ready to use.
type Builder struct {
	conds  []string
	args   []any
	orders []string
	limit  int
	offset int
	never  bool
}

// Where appends a condition. Use ? for each argument; placeholders are
// renumbered to $n at Build time.
func (b *Builder) Where(expr string, args ...any) *Builder {
	b.conds = append(b.conds, expr)
	b.args = append(b.args, args...)
	return b
}

// In constrains column to the given values. No-op when values is empty.
func (b *Builder) In(column string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		b.args = append(b.args, v)
	}
	b.conds = append(b.conds, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return b
}

// NotIn excludes rows whose column matches any of the values. No-op when
// values is empty.
func (b *Builder) NotIn(column string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		b.args = append(b.args, v)
	}
	b.conds = append(b.conds, fmt.Sprintf("%s NOT IN (%s)", column, strings.Join(placeholders, ", ")))
	return b
}

// OnlyExcept applies inclusion and exclusion lists to a column. When both
// are present the exclusions are subtracted from the inclusions first; if
// nothing survives, the builder matches no rows at all.
func (b *Builder) OnlyExcept(column string, only, except []string) *Builder {
	if len(only) > 0 {
		kept := only
		if len(except) > 0 {
			kept = make([]string, 0, len(only))
			for _, v := range only {
				if !slices.Contains(except, v) {
					kept = append(kept, v)
				}
			}
		}
		if len(kept) == 0 {
			b.never = true
			return b
		}
		return b.In(column, kept)
	}
	return b.NotIn(column, except)
}

// Order appends an ORDER BY column if it is whitelisted; unknown columns
// are dropped.
func (b *Builder) Order(column string, desc bool, allowed ...string) *Builder {
	if !slices.Contains(allowed, column) {
		return b
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	b.orders = append(b.orders, column+" "+dir)
	return b
}

// Limit caps the row count. Non-positive values are ignored.
func (b *Builder) Limit(n int) *Builder {
	if n > 0 {
		b.limit = n
	}
	return b
}

// Offset skips rows. Non-positive values are ignored.
func (b *Builder) Offset(n int) *Builder {
	if n > 0 {
		b.offset = n
	}
	return b
}

// Build renders the fragment starting placeholders at $start and returns
// it with the argument slice. The fragment begins with a leading space
// when non-empty.
func (b *Builder) Build(start int) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(b.args)+2)

	switch {
	case b.never:
		sb.WriteString(" WHERE FALSE")
	case len(b.conds) > 0:
		sb.WriteString(" WHERE ")
		n := start
		for i, cond := range b.conds {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			for _, r := range cond {
				if r == '?' {
					fmt.Fprintf(&sb, "$%d", n)
					n++
					continue
				}
				sb.WriteRune(r)
			}
		}
		args = append(args, b.args...)
	}

	if len(b.orders) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orders, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT $%d", start+len(args))
		args = append(args, b.limit)
	}
	if b.offset > 0 {
		fmt.Fprintf(&sb, " OFFSET $%d", start+len(args))
		args = append(args, b.offset)
	}

	return sb.String(), args
}

// BuildWhere renders only the WHERE portion, for COUNT queries that must
// share filters with a listing but not its ordering or paging.
func (b *Builder) BuildWhere(start int) (string, []any) {
	trimmed := &Builder{conds: b.conds, args: b.args, never: b.never}
	return trimmed.Build(start)
}
