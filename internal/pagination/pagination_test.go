package pagination

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(url.Values{})
	assert.Equal(t, Page{Page: 1, PageSize: 10}, p)
}

func TestNormalizeLocalizedAliases(t *testing.T) {
	p := Normalize(url.Values{"pagina": {"2"}, "tamanoPagina": {"5"}})
	assert.Equal(t, Page{Page: 2, PageSize: 5}, p)
}

func TestNormalizeEnglishAliasWins(t *testing.T) {
	// Documented precedence: page over pagina, pageSize over tamanoPagina.
	p := Normalize(url.Values{
		"page": {"3"}, "pagina": {"9"},
		"pageSize": {"20"}, "tamanoPagina": {"99"},
	})
	assert.Equal(t, Page{Page: 3, PageSize: 20}, p)
}

func TestNormalizeNonNumericFallsBack(t *testing.T) {
	p := Normalize(url.Values{"page": {"abc"}, "pageSize": {"x"}})
	assert.Equal(t, Page{Page: 1, PageSize: 10}, p)
}

func TestNormalizeBounds(t *testing.T) {
	p := Normalize(url.Values{"page": {"0"}, "pageSize": {"1000"}})
	assert.Equal(t, Page{Page: 1, PageSize: 100}, p)

	p = Normalize(url.Values{"page": {"-4"}, "pageSize": {"-1"}})
	assert.Equal(t, Page{Page: 1, PageSize: 10}, p)
}

func TestNormalizeFiltros(t *testing.T) {
	f := NormalizeFiltros(url.Values{
		"q":           {" robo "},
		"codigo":      {"EXP-001"},
		"estado":      {"abierto"},
		"tecnicoId":   {"7"},
		"fechaInicio": {"2025-01-15"},
		"fechaFin":    {"2025-02-01"},
	})
	assert.Equal(t, "robo", f.Q)
	assert.Equal(t, "EXP-001", f.Codigo)
	assert.Equal(t, "abierto", f.Estado)
	require.NotNil(t, f.TecnicoID)
	assert.EqualValues(t, 7, *f.TecnicoID)
	require.NotNil(t, f.FechaInicio)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), *f.FechaInicio)
	require.NotNil(t, f.FechaFin)
}

func TestNormalizeFiltrosInvalidDateDropped(t *testing.T) {
	// Invalid dates are treated as absent, not rejected.
	f := NormalizeFiltros(url.Values{
		"fechaInicio": {"15/01/2025"},
		"fechaFin":    {"not-a-date"},
		"tecnicoId":   {"xyz"},
	})
	assert.Nil(t, f.FechaInicio)
	assert.Nil(t, f.FechaFin)
	assert.Nil(t, f.TecnicoID)
}
