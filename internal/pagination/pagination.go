// Package pagination normalizes the inconsistent paging and filter parameters
// clients send into one canonical contract.
package pagination

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Alias precedence: the English name wins when both are present. The order of
// these slices is the documented contract; see the tests.
var (
	pageAliases     = []string{"page", "pagina"}
	pageSizeAliases = []string{"pageSize", "tamanoPagina"}
)

// Page is a normalized paging request.
type Page struct {
	Page     int
	PageSize int
}

// Filtros are the normalized optional list filters. Absent or unparseable
// values stay nil/empty: an invalid date string means "no date filter", it
// never errors (documented contract, asserted in tests).
type Filtros struct {
	Q           string
	Codigo      string
	Estado      string
	TecnicoID   *int64
	FechaInicio *time.Time
	FechaFin    *time.Time
}

// Normalize maps raw query parameters onto a Page, applying alias precedence,
// defaults and bounds. Non-numeric values fall back to the default.
func Normalize(q url.Values) Page {
	p := Page{
		Page:     intParam(q, pageAliases, DefaultPage),
		PageSize: intParam(q, pageSizeAliases, DefaultPageSize),
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// NormalizeFiltros extracts the list filters from raw query parameters.
func NormalizeFiltros(q url.Values) Filtros {
	f := Filtros{
		Q:      strings.TrimSpace(q.Get("q")),
		Codigo: strings.TrimSpace(q.Get("codigo")),
		Estado: strings.TrimSpace(q.Get("estado")),
	}
	if raw := strings.TrimSpace(q.Get("tecnicoId")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.TecnicoID = &id
		}
	}
	f.FechaInicio = dateParam(q, "fechaInicio")
	f.FechaFin = dateParam(q, "fechaFin")
	return f
}

func intParam(q url.Values, aliases []string, fallback int) int {
	for _, name := range aliases {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fallback
		}
		return n
	}
	return fallback
}

func dateParam(q url.Values, name string) *time.Time {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
