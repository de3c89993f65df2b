package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "anon", "service", resilience.NewCircuitBreaker("supabase-test", nil), resilience.Config{}, zap.NewNop())
}

func TestListCustomers_MapsColumns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/clientes", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"c1","nome":"Oficina Sol","razao_social":"Sol Ltda","cnpj_cpf":"123","telefone":"11","email":"a@b.c","endereco":"Rua X"}]`))
	})

	got, err := c.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Customer{ID: "c1", Name: "Oficina Sol", LegalName: "Sol Ltda", TaxID: "123", Phone: "11", Email: "a@b.c", Address: "Rua X"}, got[0])
}

func TestListParts_MissingPricesStayNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"p1","nome":"Filtro","preco_venda":null,"preco_custo":12.5}]`))
	})

	got, err := c.ListParts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].SalePrice)
	require.NotNil(t, got[0].CostPrice)
	assert.Equal(t, 12.5, *got[0].CostPrice)
}

func TestListServices_EmptyTable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	got, err := c.ListServices(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListServices_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListServices(context.Background())
	var ext *domain.ErrExternalService
	assert.True(t, errors.As(err, &ext))
}
