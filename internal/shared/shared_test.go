package shared

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Glass Tiles":        "glass-tiles",
		"  Café &  Crème  ":  "cafe-creme",
		"ALREADY-slugged":    "already-slugged",
		"trailing symbols!!": "trailing-symbols",
		"100% Wool":          "100-wool",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestListFiltersNormalize(t *testing.T) {
	f := ListFilters{Page: -3, Limit: 0, SortDir: "sideways"}
	f.Normalize()
	require.Equal(t, DefaultPage, f.Page)
	require.Equal(t, DefaultLimit, f.Limit)
	require.Equal(t, SortAsc, f.SortDir)
	require.Equal(t, 0, f.Offset())

	f = ListFilters{Page: 3, Limit: 25, SortDir: SortDesc}
	f.Normalize()
	require.Equal(t, SortDesc, f.SortDir)
	require.Equal(t, 50, f.Offset())
}

func TestMapStorageError(t *testing.T) {
	require.ErrorIs(t, MapStorageError(pgx.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, MapStorageError(&pgconn.PgError{Code: "23505"}), ErrConflict)

	other := errors.New("connection refused")
	require.Equal(t, other, MapStorageError(other))
	require.NoError(t, MapStorageError(nil))
}
