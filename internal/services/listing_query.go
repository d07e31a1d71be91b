package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/example/catalogapi/internal/utils"
)

const (
	listingFrom = "FROM products p" +
		" LEFT JOIN product_attributes pa ON p.id = pa.product_id" +
		" LEFT JOIN dynamic_attributes da ON pa.attribute_id = da.id"

	attributeSummary = "COALESCE(STRING_AGG(da.name || ': ' || pa.value, ', ' ORDER BY da.name), '')"

	listingColumns = "p.id, p.name, p.description, p.price, p.image, p.category, p.created_at, " +
		attributeSummary + " AS attributes"

	defaultSortColumn = "p.created_at"
)

var sortColumns = map[string]string{
	"name":       "p.name",
	"price":      "p.price",
	"created_at": "p.created_at",
}

// ListRequest is the raw query string of a listing request.
type ListRequest struct {
	Filter   string `query:"filter"`
	Sort     string `query:"sort"`
	Page     string `query:"page"`
	Limit    string `query:"limit"`
	PriceMin string `query:"price_min"`
	PriceMax string `query:"price_max"`
	Category string `query:"category"`
}

// ListParams are the typed listing inputs. Nil prices and empty strings mean
// "not given".
type ListParams struct {
	Filter   string
	Sort     string
	PriceMin *float64
	PriceMax *float64
	Category string
	Page     utils.Pagination
}

// ListingQuery is a parameterized page query plus the matching count query.
// Args are in placeholder order.
type ListingQuery struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
}

// ParseListParams converts a raw request. Unparsable prices are ignored and
// pagination falls back to page 1, limit 10.
func ParseListParams(r ListRequest) ListParams {
	return ListParams{
		Filter:   strings.TrimSpace(r.Filter),
		Sort:     r.Sort,
		PriceMin: parseBound(r.PriceMin),
		PriceMax: parseBound(r.PriceMax),
		Category: r.Category,
		Page:     utils.NewPagination(r.Page, r.Limit),
	}
}

func parseBound(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SortColumn resolves a sort key against the allow-list, falling back to
// creation time.
func SortColumn(sort string) string {
	if col, ok := sortColumns[sort]; ok {
		return col
	}
	return defaultSortColumn
}

// clauseBuilder accumulates optional WHERE and HAVING fragments with their
// bindings kept parallel to the placeholders.
type clauseBuilder struct {
	where      []string
	whereArgs  []any
	having     []string
	havingArgs []any
}

func (b *clauseBuilder) Where(fragment string, args ...any) {
	b.where = append(b.where, fragment)
	b.whereArgs = append(b.whereArgs, args...)
}

func (b *clauseBuilder) Having(fragment string, args ...any) {
	b.having = append(b.having, fragment)
	b.havingArgs = append(b.havingArgs, args...)
}

// grouped renders "FROM ... [WHERE ...] GROUP BY p.id [HAVING ...]" and its
// bindings.
func (b *clauseBuilder) grouped() (string, []any) {
	var sb strings.Builder
	sb.WriteString(listingFrom)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	sb.WriteString(" GROUP BY p.id")
	if len(b.having) > 0 {
		sb.WriteString(" HAVING ")
		sb.WriteString(strings.Join(b.having, " AND "))
	}

	args := make([]any, 0, len(b.whereArgs)+len(b.havingArgs)+2)
	args = append(args, b.whereArgs...)
	args = append(args, b.havingArgs...)
	return sb.String(), args
}

// BuildListingQuery assembles the catalog listing query. User values are
// only ever bound, never written into the SQL text.
func BuildListingQuery(p ListParams) ListingQuery {
	var b clauseBuilder

	switch {
	case p.PriceMin != nil && p.PriceMax != nil:
		b.Where("p.price BETWEEN ? AND ?", *p.PriceMin, *p.PriceMax)
	case p.PriceMin != nil:
		b.Where("p.price >= ?", *p.PriceMin)
	case p.PriceMax != nil:
		b.Where("p.price <= ?", *p.PriceMax)
	}

	if p.Category != "" {
		b.Where("p.category = ?", p.Category)
	}

	if p.Filter != "" {
		term := "%" + escapeLike(p.Filter) + "%"
		b.Having("(p.name ILIKE ? OR p.description ILIKE ? OR "+attributeSummary+" ILIKE ?)", term, term, term)
	}

	body, args := b.grouped()

	pg := normalizePage(p.Page)

	countArgs := make([]any, len(args))
	copy(countArgs, args)

	return ListingQuery{
		SQL:       "SELECT " + listingColumns + " " + body + " ORDER BY " + SortColumn(p.Sort) + ", p.id LIMIT ? OFFSET ?",
		Args:      append(args, pg.Limit, pg.Offset),
		CountSQL:  "SELECT COUNT(*) FROM (SELECT p.id " + body + ") AS filtered",
		CountArgs: countArgs,
	}
}

// normalizePage re-derives defaults, caps and the offset, so a hand-built
// Pagination is paged the same way as a parsed one.
func normalizePage(pg utils.Pagination) utils.Pagination {
	return utils.Paginate(pg.Page, pg.Limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in a search term match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
