package domain

import "time"

// ============================================================
// Catálogo do console: clientes, peças e serviços
// ============================================================

// Customer is a client registered in the operations console.
type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`                 // nome fantasia
	LegalName string `json:"legalName,omitempty"`  // razão social
	TaxID     string `json:"taxId,omitempty"`      // CNPJ/CPF
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

// DisplayName returns the trade name, falling back to the legal name.
func (c Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.LegalName
}

// Part is a stock item (peça). Prices are pointers: a missing price is not zero.
type Part struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SalePrice *float64 `json:"salePrice,omitempty"`
	CostPrice *float64 `json:"costPrice,omitempty"`
}

// Service is a billable service (serviço).
type Service struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	UnitPrice *float64 `json:"unitPrice,omitempty"`
}

// Snapshot is the in-memory copy of the catalog loaded when the assistant
// widget mounts. It is replaced wholesale on reload, never patched.
type Snapshot struct {
	Customers []Customer `json:"customers"`
	Parts     []Part     `json:"parts"`
	Services  []Service  `json:"services"`
	LoadedAt  time.Time  `json:"loadedAt"`
}

// SnapshotSummary is the compact view of a snapshot returned by the API.
type SnapshotSummary struct {
	Customers int       `json:"customers"`
	Parts     int       `json:"parts"`
	Services  int       `json:"services"`
	LoadedAt  time.Time `json:"loadedAt"`
}

// Summary returns record counts for the snapshot.
func (s *Snapshot) Summary() SnapshotSummary {
	if s == nil {
		return SnapshotSummary{}
	}
	return SnapshotSummary{
		Customers: len(s.Customers),
		Parts:     len(s.Parts),
		Services:  len(s.Services),
		LoadedAt:  s.LoadedAt,
	}
}

// Money returns a pointer to v. Handy for building catalog fixtures.
func Money(v float64) *float64 {
	return &v
}
