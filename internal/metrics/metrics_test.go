package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSearch(t *testing.T) {
	m := New()

	m.RecordSearch(true)
	m.RecordSearch(true)
	m.RecordSearch(false)

	assert.InDelta(t, 2, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("miss")), 0)
}

func TestRecordBorrowAndReserve(t *testing.T) {
	m := New()

	m.RecordBorrow(OutcomeOK)
	m.RecordBorrow(OutcomeUnavailable)
	m.RecordReserve(OutcomeAvailable)

	assert.InDelta(t, 1, testutil.ToFloat64(m.BorrowsTotal.WithLabelValues(OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BorrowsTotal.WithLabelValues(OutcomeUnavailable)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ReservesTotal.WithLabelValues(OutcomeAvailable)), 0)
}

func TestRecordOverdue_IgnoresZero(t *testing.T) {
	m := New()

	m.RecordOverdue(0)
	m.RecordOverdue(3)

	assert.InDelta(t, 3, testutil.ToFloat64(m.OverdueNotificationsTotal), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSearch(true)
		m.RecordBorrow(OutcomeOK)
		m.RecordRecommendation(5)
		m.SetCatalogSize(4)
	})
}

func TestHandler_Exposes(t *testing.T) {
	m := New()
	m.SetCatalogSize(4)
	m.RecordRecommendation(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "catalog_entries 4")
	assert.Contains(t, string(body), "catalog_recommendation_size_count 1")
}
