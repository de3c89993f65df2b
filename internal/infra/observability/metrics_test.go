package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/observability"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewMetrics_Twice(t *testing.T) {
	// private registries: no duplicate collector panic
	assert.NotPanics(t, func() {
		observability.NewMetrics()
		observability.NewMetrics()
	})
}

func TestGetAssistantSnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrIntent(domain.IntentGreeting)
	m.IncrIntent(domain.IntentGreeting)
	m.IncrIntent(domain.IntentCountClients)
	m.IncrDispatch(false, false)
	m.IncrDispatch(false, false)
	m.IncrDispatch(true, true)

	snap := m.GetAssistantSnapshot()
	assert.Equal(t, int64(3), snap.Messages)
	assert.Equal(t, int64(1), snap.DispatchErrors)
	assert.Equal(t, int64(1), snap.LiveFetches)
	assert.InDelta(t, 1.0/3.0, snap.ErrorRate, 1e-9)
	assert.Equal(t, int64(2), snap.Intents["greeting"])
	assert.Equal(t, int64(1), snap.Intents["count_clients"])
}

func TestGetAssistantSnapshot_Empty(t *testing.T) {
	snap := observability.NewMetrics().GetAssistantSnapshot()
	assert.Zero(t, snap.Messages)
	assert.Zero(t, snap.ErrorRate)
	assert.Empty(t, snap.Intents)
}

func TestCollaborators(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	m := observability.NewMetrics()
	ctx := context.Background()

	observability.NewDiagnostics(logger, m).LogError(ctx, &domain.ErrDispatch{Intent: domain.IntentStats, Err: errors.New("boom")})
	observability.NewDiagnostics(logger, m).LogError(ctx, nil)
	observability.NewEventNavigator(logger, m).Navigate(ctx, "/clientes")
	observability.NewEventNotifier(logger, m).Notify(ctx, port.NotifyError, "falhou")

	assert.Equal(t, 1, logs.FilterMessage("assistant dispatch failed").Len())
	assert.Equal(t, 1, logs.FilterField(zap.String("route", "/clientes")).Len())
	assert.Equal(t, zap.WarnLevel, logs.FilterMessage("console notify").All()[0].Level)

	families, err := m.Registry.Gather()
	assert.NoError(t, err)
	series := 0
	for _, mf := range families {
		if mf.GetName() == "bfa_console_events_total" {
			series = len(mf.GetMetric())
		}
	}
	assert.Equal(t, 3, series)
}
