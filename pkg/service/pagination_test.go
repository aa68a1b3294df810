package service_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trelliskit/trellis/pkg/service"
)

func TestPaginationNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       service.Pagination
		wantPage int
		wantSize int
	}{
		{name: "zero value gets defaults", in: service.Pagination{}, wantPage: 1, wantSize: 20},
		{name: "negative page clamps to 1", in: service.Pagination{Page: -3, PageSize: 10}, wantPage: 1, wantSize: 10},
		{name: "oversized page size capped", in: service.Pagination{Page: 2, PageSize: 500}, wantPage: 2, wantSize: 100},
		{name: "valid passes through", in: service.Pagination{Page: 3, PageSize: 50}, wantPage: 3, wantSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in.Normalize()
			require.Equal(t, tt.wantPage, got.Page)
			require.Equal(t, tt.wantSize, got.PageSize)
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, service.Pagination{Page: 1, PageSize: 20}.Offset())
	require.Equal(t, 40, service.Pagination{Page: 3, PageSize: 20}.Offset())
	require.Equal(t, 20, service.Pagination{Page: 2}.Offset())
}

func TestParsePagination(t *testing.T) {
	t.Parallel()

	p := service.ParsePagination(url.Values{"page": {"2"}, "page_size": {"30"}})
	require.Equal(t, service.Pagination{Page: 2, PageSize: 30}, p)

	p = service.ParsePagination(url.Values{"page": {"abc"}})
	require.Equal(t, service.Pagination{Page: 1, PageSize: 20}, p)

	p = service.ParsePagination(url.Values{"page_size": {"9999"}})
	require.Equal(t, 100, p.PageSize)
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := service.NewPage([]string{"a"}, 41, service.Pagination{Page: 2, PageSize: 1})
	require.Equal(t, []string{"a"}, page.Items)
	require.EqualValues(t, 41, page.Total)
	require.Equal(t, 2, page.PageNumber)

	empty := service.NewPage[string](nil, 0, service.Pagination{})
	require.NotNil(t, empty.Items)
	require.Empty(t, empty.Items)
}
