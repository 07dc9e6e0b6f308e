package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	ok := QueriesTotal.WithLabelValues("test-backend", "ok")
	failed := QueriesTotal.WithLabelValues("test-backend", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ObserveQuery("test-backend", 10*time.Millisecond, nil)
	ObserveQuery("test-backend", 20*time.Millisecond, errors.New("timeout"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(QueryDuration), 1)
}

func TestObserveConnect(t *testing.T) {
	failed := ConnectionsTotal.WithLabelValues("test-backend", "error")
	before := testutil.ToFloat64(failed)

	ObserveConnect("test-backend", errors.New("refused"))

	assert.Equal(t, before+1, testutil.ToFloat64(failed))
}

func TestWriteFile(t *testing.T) {
	ObserveQuery("file-backend", 5*time.Millisecond, nil)
	ObserveConnect("file-backend", nil)

	path := filepath.Join(t.TempDir(), "dagraph.prom")
	require.NoError(t, WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `dagraph_queries_total{backend="file-backend",status="ok"}`)
	assert.Contains(t, out, `dagraph_connections_total{backend="file-backend",status="ok"}`)
	assert.Contains(t, out, "dagraph_query_duration_seconds_bucket")
}
