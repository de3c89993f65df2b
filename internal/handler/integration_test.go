package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/handler"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/cache"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/client"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/conversation"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/observability"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/ops-console-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestIntegration_FullFlow runs the router against a mock console backend
// through the real HTTP catalog client.
func TestIntegration_FullFlow(t *testing.T) {
	var (
		customerCalls atomic.Int32
		down          atomic.Bool
	)

	// --- Mock console API ---
	console := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/clientes":
			customerCalls.Add(1)
			w.Write([]byte(`[{"id":"c1","name":"Auto Center Silva"},{"id":"c2","name":"Oficina Souza"},{"id":"c3","legalName":"Lima Peças Ltda"}]`))
		case "/v1/pecas":
			w.Write([]byte(`[{"id":"p1","name":"Filtro de óleo","salePrice":35},{"id":"p2","name":"Pastilha de freio","salePrice":120}]`))
		case "/v1/servicos":
			w.Write([]byte(`[{"id":"s1","name":"Alinhamento","unitPrice":80}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer console.Close()

	// --- Build service ---
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("console-integration", logger)
	cfg := resilience.Config{MaxRetries: 0, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 4}
	catalog := client.NewCatalogClient(&http.Client{Timeout: 5 * time.Second}, console.URL, cb, cfg)

	sessions := cache.New[*service.Session](time.Hour)
	defer sessions.Close()

	manager := service.NewSessionManager(
		catalog,
		sessions,
		conversation.NewMemoryFactory(),
		observability.NewEventNotifier(logger, metrics),
		observability.NewEventNavigator(logger, metrics),
		service.SessionConfig{},
		logger,
	)
	dispatcher := service.NewDispatcher(catalog, observability.NewDiagnostics(logger, metrics), nil, metrics, logger)
	svc := service.NewAssistant(manager, service.NewClassifier(), dispatcher, metrics, logger)
	router := handler.NewRouter(svc, catalog, nil, metrics, logger)

	// --- Session ---
	sess := createSession(t, router)
	assert.Equal(t, 3, sess.Snapshot.Customers)
	assert.Equal(t, int32(1), customerCalls.Load())

	send := func(text string) domain.Exchange {
		t.Helper()
		rec := do(t, router, http.MethodPost, "/v1/assistant/sessions/"+sess.SessionID+"/messages", domain.MessageRequest{Text: text})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ex domain.Exchange
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ex))
		return ex
	}

	// cached: answered from the snapshot
	ex := send("qual o serviço mais caro?")
	assert.Equal(t, domain.IntentCompareServices, ex.Intent)
	assert.Contains(t, ex.Assistant.Text, "Alinhamento")
	assert.Equal(t, int32(1), customerCalls.Load())

	// live: reads the console again
	ex = send("quantos clientes temos?")
	assert.Equal(t, domain.IntentCountClients, ex.Intent)
	assert.Contains(t, ex.Assistant.Text, "3")
	assert.Equal(t, int32(2), customerCalls.Load())

	// console down: generic error turn, still a 200
	down.Store(true)
	ex = send("quantos clientes temos?")
	assert.True(t, ex.Assistant.Error)
	assert.Equal(t, service.GenericErrorText, ex.Assistant.Text)

	// cached intents keep working from the snapshot
	ex = send("qual a peça mais cara?")
	assert.False(t, ex.Assistant.Error)
	assert.Contains(t, ex.Assistant.Text, "Pastilha de freio")

	// --- Turns ---
	rec := do(t, router, http.MethodGet, "/v1/assistant/sessions/"+sess.SessionID+"/turns", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var turns domain.TurnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turns))
	require.Len(t, turns.Turns, 8)
	assert.True(t, turns.Turns[5].Error)
	assert.False(t, turns.Typing)

	// --- Metrics ---
	m := metrics.GetAssistantSnapshot()
	assert.Equal(t, int64(4), m.Messages)
	assert.Equal(t, int64(1), m.DispatchErrors)
	assert.Equal(t, int64(2), m.LiveFetches)
}
