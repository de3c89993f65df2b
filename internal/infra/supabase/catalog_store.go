package supabase

import (
	"context"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

// ============================================================
// Catalog store: clientes, pecas, servicos (implements port.CatalogFetcher)
// ============================================================

type clienteRow struct {
	ID          string `json:"id"`
	Nome        string `json:"nome"`
	RazaoSocial string `json:"razao_social"`
	Documento   string `json:"cnpj_cpf"`
	Telefone    string `json:"telefone"`
	Email       string `json:"email"`
	Endereco    string `json:"endereco"`
}

type pecaRow struct {
	ID         string   `json:"id"`
	Nome       string   `json:"nome"`
	PrecoVenda *float64 `json:"preco_venda"`
	PrecoCusto *float64 `json:"preco_custo"`
}

type servicoRow struct {
	ID    string   `json:"id"`
	Nome  string   `json:"nome"`
	Preco *float64 `json:"preco"`
}

// ListCustomers fetches clientes ordered by creation, oldest first.
func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := selectAll[clienteRow](ctx, c, "clientes", "select=*&order=created_at.asc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Customer{
			ID:        r.ID,
			Name:      r.Nome,
			LegalName: r.RazaoSocial,
			TaxID:     r.Documento,
			Phone:     r.Telefone,
			Email:     r.Email,
			Address:   r.Endereco,
		})
	}
	return out, nil
}

// ListParts fetches pecas.
func (c *Client) ListParts(ctx context.Context) ([]domain.Part, error) {
	rows, err := selectAll[pecaRow](ctx, c, "pecas", "select=id,nome,preco_venda,preco_custo&order=created_at.asc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Part, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Part{ID: r.ID, Name: r.Nome, SalePrice: r.PrecoVenda, CostPrice: r.PrecoCusto})
	}
	return out, nil
}

// ListServices fetches servicos.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	rows, err := selectAll[servicoRow](ctx, c, "servicos", "select=id,nome,preco&order=created_at.asc")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Service{ID: r.ID, Name: r.Nome, UnitPrice: r.Preco})
	}
	return out, nil
}
