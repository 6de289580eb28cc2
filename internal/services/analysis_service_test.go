package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"golang.org/x/sync/errgroup"

	"github.com/eyecrackcodes/agentsummary/internal/analytics"
	"github.com/eyecrackcodes/agentsummary/internal/infrastructure"
	ws "github.com/eyecrackcodes/agentsummary/internal/websocket"
	"github.com/eyecrackcodes/agentsummary/pkg/contracts/domain"
	"github.com/eyecrackcodes/agentsummary/pkg/contracts/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newService(t *testing.T, hub *ws.Hub) *AnalysisService {
	t.Helper()
	analyzer, err := analytics.NewAnalyzer(analytics.DefaultConfig(), testLogger())
	require.NoError(t, err)
	svc, err := NewAnalysisService(analyzer, hub, testLogger())
	require.NoError(t, err)
	return svc
}

func productionHeaders() []string {
	return []string{
		domain.ColumnAgent, domain.ColumnWeek,
		domain.ColumnFirstQuotes, domain.ColumnSecondQuotes,
		domain.ColumnSubmitted, domain.ColumnFreeLook,
		domain.ColumnSmokerPct, domain.ColumnPreferredPct,
		domain.ColumnStandardPct, domain.ColumnGradedPct,
		domain.ColumnGIPct, domain.ColumnCCPct,
	}
}

func sampleTable(source string) *domain.ProductionTable {
	return &domain.ProductionTable{
		Headers: productionHeaders(),
		Rows: [][]string{
			{"Adams", "W01", "30", "16", "10", "1", "10", "50", "20", "5", "10", "5"},
			{"Adams", "W02", "30", "16", "10", "1", "10", "50", "20", "5", "10", "5"},
			{"Adams", "Total", "60", "32", "20", "2", "10", "50", "20", "5", "10", "5"},
			{"Baker", "W01", "40", "20", "8", "1", "5", "15", "30", "20", "45", "0"},
			{"Baker", "W02", "40", "20", "8", "1", "5", "15", "30", "20", "45", "0"},
			{"Baker", "Total", "80", "40", "16", "2", "5", "15", "30", "20", "45", "0"},
		},
		Source:   source,
		LoadedAt: time.Now(),
	}
}

func TestAnalysisService_NoDataset(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Agents(ctx, analytics.WeekRange{})
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Summary(ctx, analytics.WeekRange{})
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Weeks(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Dataset(ctx)
	assert.ErrorIs(t, err, ErrNoDataset)

	assert.False(t, svc.HasDataset())
}

func TestAnalysisService_SetDataset(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	info, err := svc.SetDataset(ctx, sampleTable("weekly.csv"))
	require.NoError(t, err)

	assert.NotEmpty(t, info.ID)
	assert.NotEmpty(t, info.Fingerprint)
	assert.Equal(t, "weekly.csv", info.Source)
	assert.Equal(t, 6, info.RowCount)
	assert.Equal(t, 2, info.AgentCount)
	assert.Equal(t, []string{"W01", "W02"}, info.Weeks)
	assert.True(t, svc.HasDataset())

	weeks, err := svc.Weeks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"W01", "W02"}, weeks)
}

func TestAnalysisService_SetDatasetRejectsInvalid(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.SetDataset(ctx, &domain.ProductionTable{
		Headers: []string{"Name", "Score"},
		Rows:    [][]string{{"x", "1"}},
	})
	require.Error(t, err)
	assert.False(t, svc.HasDataset())
}

func TestAnalysisService_Accessors(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.SetDataset(ctx, sampleTable("weekly.csv"))
	require.NoError(t, err)

	agents, err := svc.Agents(ctx, analytics.WeekRange{})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "Adams", agents[0].Agent)
	assert.Equal(t, "Baker", agents[1].Agent)

	risk, err := svc.Risk(ctx, analytics.WeekRange{})
	require.NoError(t, err)
	require.Len(t, risk, 2)

	assessment, err := svc.AgentRisk(ctx, "Baker", analytics.WeekRange{})
	require.NoError(t, err)
	assert.Equal(t, "Baker", assessment.Agent)

	_, err = svc.AgentRisk(ctx, "Nobody", analytics.WeekRange{})
	assert.ErrorIs(t, err, ErrAgentNotFound)

	summary, err := svc.Summary(ctx, analytics.WeekRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.AgentCount)

	cfg := svc.Thresholds()
	assert.Equal(t, analytics.DefaultConfig().MinTotalQuotes, cfg.MinTotalQuotes)
}

func TestAnalysisService_SnapshotCache(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.SetDataset(ctx, sampleTable("weekly.csv"))
	require.NoError(t, err)

	// The full-period snapshot is primed by SetDataset
	assert.Equal(t, 1, svc.CachedSnapshots())

	first, err := svc.Snapshot(ctx, analytics.WeekRange{Start: "W01", End: "W01"})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.CachedSnapshots())

	second, err := svc.Snapshot(ctx, analytics.WeekRange{Start: "W01", End: "W01"})
	require.NoError(t, err)

	// Cache hit returns the identical snapshot value
	assert.Same(t, first, second)
}

func TestAnalysisService_NewDatasetPurgesCache(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.SetDataset(ctx, sampleTable("first.csv"))
	require.NoError(t, err)

	_, err = svc.Snapshot(ctx, analytics.WeekRange{Start: "W01", End: "W01"})
	require.NoError(t, err)
	require.Equal(t, 2, svc.CachedSnapshots())

	// Same content, different source file: new dataset ID, fresh cache
	info, err := svc.SetDataset(ctx, sampleTable("second.csv"))
	require.NoError(t, err)
	assert.Equal(t, "second.csv", info.Source)
	assert.Equal(t, 1, svc.CachedSnapshots())
}

// counterTotal sums every data point of the named int64 counter, and
// reports whether any point carries the given attribute key.
func counterTotal(rm metricdata.ResourceMetrics, name, attrKey string) (total int64, hasAttr bool) {
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
				if attrKey != "" {
					if _, ok := dp.Attributes.Value(attribute.Key(attrKey)); ok {
						hasAttr = true
					}
				}
			}
		}
	}
	return total, hasAttr
}

func TestAnalysisService_RecordsPipelineMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreatePipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	svc := newService(t, nil)
	svc.SetMetrics(metrics)
	ctx := context.Background()

	table := sampleTable("weekly.csv")
	table.Rows[0][2] = "not-a-number" // one unparseable numeric cell

	_, err = svc.SetDataset(ctx, table)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	rows, _ := counterTotal(rm, "rows_normalized_total", "")
	assert.Equal(t, int64(len(table.Rows)), rows)

	defects, hasCategory := counterTotal(rm, "data_defects_total", "category")
	assert.GreaterOrEqual(t, defects, int64(1))
	assert.True(t, hasCategory)

	// A sub-range pass records its rows again
	_, err = svc.Snapshot(ctx, analytics.WeekRange{Start: "W01", End: "W01"})
	require.NoError(t, err)

	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	rows, _ = counterTotal(rm, "rows_normalized_total", "")
	assert.Equal(t, int64(2*len(table.Rows)), rows)
}

func TestAnalysisService_ConcurrentSnapshots(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.SetDataset(ctx, sampleTable("weekly.csv"))
	require.NoError(t, err)

	sel := analytics.WeekRange{Start: "W01", End: "W01"}
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			snapshot, err := svc.Snapshot(ctx, sel)
			if err != nil {
				return err
			}
			assert.Len(t, snapshot.Weeks, 1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// The primed full-period snapshot plus the single sub-range entry
	assert.Equal(t, 2, svc.CachedSnapshots())
}

func TestAnalysisService_FingerprintStableAcrossSources(t *testing.T) {
	first := fingerprintTable(sampleTable("a.csv"))
	second := fingerprintTable(sampleTable("b.csv"))
	assert.Equal(t, first, second)

	changed := sampleTable("a.csv")
	changed.Rows[0][2] = "31"
	assert.NotEqual(t, first, fingerprintTable(changed))
}

func TestAnalysisService_BroadcastsDatasetRefreshed(t *testing.T) {
	hub := ws.NewHub(testLogger())
	hub.Start()
	t.Cleanup(hub.Stop)

	svc := newService(t, hub)
	ctx := context.Background()

	info, err := svc.SetDataset(ctx, sampleTable("weekly.csv"))
	require.NoError(t, err)

	// The broadcast is queued on the hub even with no clients connected;
	// verify the payload shape by round-tripping the event.
	payload, err := json.Marshal(events.DatasetRefreshed{
		DatasetID:   info.ID,
		Fingerprint: info.Fingerprint,
		Source:      info.Source,
		RowCount:    info.RowCount,
		AgentCount:  info.AgentCount,
		WeekCount:   info.WeekCount,
		LoadedAt:    info.LoadedAt,
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), info.Fingerprint)
}
