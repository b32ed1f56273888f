package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := New(reg)
	require.NoError(t, err)

	rec.ObserveOp("create", "ok", 3*time.Millisecond)
	rec.ObserveOp("create", "ok", time.Millisecond)
	rec.ObserveOp("modify", "invalid", 0)
	rec.ObserveChange("item")

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.ops.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ops.WithLabelValues("modify", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.changes.WithLabelValues("item")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
