package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/catalogapi/internal/utils"
)

func float(v float64) *float64 { return &v }

func TestBuildListingQuery_Defaults(t *testing.T) {
	t.Parallel()

	q := BuildListingQuery(ListParams{Page: utils.NewPagination("", "")})

	assert.NotContains(t, q.SQL, "WHERE")
	assert.NotContains(t, q.SQL, "HAVING")
	assert.True(t, strings.HasSuffix(q.SQL, "GROUP BY p.id ORDER BY p.created_at, p.id LIMIT ? OFFSET ?"), q.SQL)
	assert.Equal(t, []any{10, 0}, q.Args)
	assert.Empty(t, q.CountArgs)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT p.id "+listingFrom+" GROUP BY p.id) AS filtered", q.CountSQL)
}

func TestBuildListingQuery_PriceRangeCategoryAndPage(t *testing.T) {
	t.Parallel()

	q := BuildListingQuery(ListParams{
		PriceMin: float(10),
		PriceMax: float(50),
		Category: "x",
		Page:     utils.NewPagination("2", "5"),
	})

	assert.Contains(t, q.SQL, "WHERE p.price BETWEEN ? AND ? AND p.category = ? GROUP BY p.id")
	assert.Contains(t, q.SQL, "ORDER BY p.created_at")
	assert.Equal(t, []any{10.0, 50.0, "x", 5, 5}, q.Args)
	assert.Equal(t, []any{10.0, 50.0, "x"}, q.CountArgs)
	assert.Contains(t, q.CountSQL, "WHERE p.price BETWEEN ? AND ? AND p.category = ?")
}

func TestBuildListingQuery_SingleBound(t *testing.T) {
	t.Parallel()

	q := BuildListingQuery(ListParams{PriceMin: float(3)})
	assert.Contains(t, q.SQL, "WHERE p.price >= ? GROUP BY")
	assert.Equal(t, []any{3.0, 10, 0}, q.Args)

	q = BuildListingQuery(ListParams{PriceMax: float(7)})
	assert.Contains(t, q.SQL, "WHERE p.price <= ? GROUP BY")
	assert.Equal(t, []any{7.0, 10, 0}, q.Args)
}

func TestBuildListingQuery_FilterGoesToHaving(t *testing.T) {
	t.Parallel()

	q := BuildListingQuery(ListParams{
		Filter:   "50%_off",
		Category: "sale",
		Page:     utils.NewPagination("1", "20"),
	})

	where := strings.Index(q.SQL, "WHERE p.category = ?")
	group := strings.Index(q.SQL, "GROUP BY p.id")
	having := strings.Index(q.SQL, "HAVING (p.name ILIKE ?")
	require.True(t, where >= 0 && group > where && having > group, q.SQL)

	term := `%50\%\_off%`
	assert.Equal(t, []any{"sale", term, term, term, 20, 0}, q.Args)
	assert.Equal(t, []any{"sale", term, term, term}, q.CountArgs)
	assert.Contains(t, q.CountSQL, "HAVING (p.name ILIKE ?")
	assert.NotContains(t, q.SQL, "50%_off")
}

func TestBuildListingQuery_PlaceholdersMatchArgs(t *testing.T) {
	t.Parallel()

	params := []ListParams{
		{},
		{Filter: "lamp"},
		{PriceMin: float(1), PriceMax: float(2), Category: "c", Filter: "f", Sort: "price"},
	}
	for _, p := range params {
		q := BuildListingQuery(p)
		assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Args), q.SQL)
		assert.Equal(t, strings.Count(q.CountSQL, "?"), len(q.CountArgs), q.CountSQL)
	}
}

func TestBuildListingQuery_Sort(t *testing.T) {
	t.Parallel()

	assert.Contains(t, BuildListingQuery(ListParams{Sort: "price"}).SQL, "ORDER BY p.price, p.id")
	assert.Contains(t, BuildListingQuery(ListParams{Sort: "name"}).SQL, "ORDER BY p.name, p.id")

	q := BuildListingQuery(ListParams{Sort: "price; DROP TABLE products"})
	assert.Contains(t, q.SQL, "ORDER BY p.created_at, p.id")
	assert.NotContains(t, q.SQL, "DROP")
}

func TestSortColumn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "p.price", SortColumn("price"))
	assert.Equal(t, "p.created_at", SortColumn(""))
	assert.Equal(t, "p.created_at", SortColumn("p.price"))
}

func TestParseListParams(t *testing.T) {
	t.Parallel()

	p := ParseListParams(ListRequest{
		Filter:   "  lamp ",
		Sort:     "name",
		Page:     "0",
		Limit:    "-3",
		PriceMin: "abc",
		PriceMax: "99.5",
		Category: "home",
	})

	assert.Equal(t, "lamp", p.Filter)
	assert.Equal(t, "name", p.Sort)
	assert.Nil(t, p.PriceMin)
	require.NotNil(t, p.PriceMax)
	assert.Equal(t, 99.5, *p.PriceMax)
	assert.Equal(t, "home", p.Category)
	assert.Equal(t, utils.Pagination{Page: 1, Limit: 10, Offset: 0}, p.Page)
}

func TestParseListParams_RejectsNonFiniteBounds(t *testing.T) {
	t.Parallel()

	p := ParseListParams(ListRequest{PriceMin: "NaN", PriceMax: "Inf"})
	assert.Nil(t, p.PriceMin)
	assert.Nil(t, p.PriceMax)
}

func TestBuildListingQuery_RecomputesOffset(t *testing.T) {
	t.Parallel()

	q := BuildListingQuery(ListParams{Page: utils.Pagination{Page: 2, Limit: 5}})
	assert.Equal(t, []any{5, 5}, q.Args)

	q = BuildListingQuery(ListParams{Page: utils.Pagination{Page: 3, Limit: 1000, Offset: -7}})
	assert.Equal(t, []any{utils.MaxLimit, 2 * utils.MaxLimit}, q.Args)
}

func TestBuildListingQuery_HugePage(t *testing.T) {
	t.Parallel()

	q := BuildListingQuery(ParseListParams(ListRequest{Page: "9223372036854775807", Limit: "10"}))
	offset := q.Args[len(q.Args)-1].(int)
	assert.GreaterOrEqual(t, offset, 0)
	assert.Equal(t, 10, q.Args[len(q.Args)-2])
}
