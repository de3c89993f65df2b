package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// CatalogClient fetches clientes, peças and serviços from the console API.
// Implements port.CatalogFetcher.
type CatalogClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewCatalogClient creates a new CatalogClient.
func NewCatalogClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CatalogClient {
	return &CatalogClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

// ListCustomers implements port.CatalogFetcher.
func (c *CatalogClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return getList[domain.Customer](ctx, c, "clientes")
}

// ListParts implements port.CatalogFetcher.
func (c *CatalogClient) ListParts(ctx context.Context) ([]domain.Part, error) {
	return getList[domain.Part](ctx, c, "pecas")
}

// ListServices implements port.CatalogFetcher.
func (c *CatalogClient) ListServices(ctx context.Context) ([]domain.Service, error) {
	return getList[domain.Service](ctx, c, "servicos")
}

// getList fetches one collection with bulkhead, circuit breaker, retry, and tracing.
func getList[T any](ctx context.Context, c *CatalogClient, resource string) ([]T, error) {
	ctx, span := tracer.Start(ctx, "CatalogClient.List")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.resource", resource))

	var items []T

	err := c.bulkhead.Do(ctx, func() error {
		_, err := c.cb.Execute(func() (any, error) {
			return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
				url := fmt.Sprintf("%s/v1/%s", c.baseURL, resource)
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				if err != nil {
					return resilience.Permanent(err)
				}
				req.Header.Set("Accept", "application/json")

				resp, err := c.httpClient.Do(req)
				if err != nil {
					return err
				}
				defer resp.Body.Close()

				if resp.StatusCode == http.StatusNotFound {
					return resilience.Permanent(&domain.ErrNotFound{Resource: "catalog", ID: resource})
				}
				if resp.StatusCode != http.StatusOK {
					return fmt.Errorf("console API returned status %d", resp.StatusCode)
				}

				items = nil
				if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
					return resilience.Permanent(fmt.Errorf("decode %s: %w", resource, err))
				}
				return nil
			})
		})
		return err
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		span.RecordError(err)
		return nil, &domain.ErrCircuitOpen{Service: "console/" + resource}
	}
	if err != nil {
		span.RecordError(err)
		return nil, &domain.ErrExternalService{Service: "console/" + resource, Err: err}
	}

	if items == nil {
		items = []T{}
	}
	span.SetAttributes(attribute.Int("catalog.count", len(items)))
	return items, nil
}
