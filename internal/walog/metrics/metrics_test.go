package metrics_test

import (
	"errors"
	"testing"
	"time"

	tst "github.com/julianstephens/go-utils/tests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/walog/internal/walog/metrics"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveAppend("many_mutations")
	m.ObserveAppend("many_mutations")
	m.ObserveAppend("define_tablet")
	m.ObserveBatch(3, 2*time.Millisecond, nil)
	m.ObserveBatch(1, time.Millisecond, errors.New("sync failed"))
	m.ObserveClosedRejection()

	tst.AssertEqual(t, testutil.ToFloat64(m.Appends.WithLabelValues("many_mutations")), 2.0, "mutation appends")
	tst.AssertEqual(t, testutil.ToFloat64(m.Appends.WithLabelValues("define_tablet")), 1.0, "define appends")
	tst.AssertEqual(t, testutil.ToFloat64(m.Batches), 2.0, "batches")
	tst.AssertEqual(t, testutil.ToFloat64(m.SyncFailures), 1.0, "sync failures")
	tst.AssertEqual(t, testutil.ToFloat64(m.ClosedRejections), 1.0, "closed rejections")

	n, err := testutil.GatherAndCount(reg, "walog_batch_size")
	tst.RequireNoError(t, err)
	tst.AssertEqual(t, n, 1, "batch size histogram registered")
}

func TestMetrics_NilIsNoOp(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveAppend("open")
	m.ObserveBatch(1, time.Second, nil)
	m.ObserveClosedRejection()
}

func TestMetrics_UnregisteredCollectors(t *testing.T) {
	m := metrics.New(nil)
	m.ObserveBatch(4, time.Millisecond, nil)
	tst.AssertEqual(t, testutil.ToFloat64(m.Batches), 1.0, "collectors work without a registry")
}
