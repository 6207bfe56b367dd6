package capmetrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/caplog/capture"
	"github.com/arloliu/caplog/entry"
	"github.com/arloliu/caplog/format"
)

func newLog(t *testing.T, name string, p *int32) *capture.Log {
	t.Helper()

	e, err := entry.Value("v", "value", p)
	require.NoError(t, err)
	l, err := capture.NewLog(name, "", format.RowRaw, []*entry.Entry{e})
	require.NoError(t, err)

	return l
}

func TestCollector(t *testing.T) {
	var a, b int32
	motor := newLog(t, "motor", &a)
	pump := newLog(t, "pump", &b)

	m, err := capture.NewManager(t.TempDir(), []*capture.Log{motor, pump})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(m))

	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP caplog_logging Whether the manager is logging (1) or stopped (0).
# TYPE caplog_logging gauge
caplog_logging 0
# HELP caplog_rows_recorded_total Rows handed to the capture file writer.
# TYPE caplog_rows_recorded_total counter
caplog_rows_recorded_total{log="motor"} 0
caplog_rows_recorded_total{log="pump"} 0
`), "caplog_logging", "caplog_rows_recorded_total"))

	_, err = m.Start()
	require.NoError(t, err)
	for range 3 {
		motor.Record()
	}
	pump.Record()

	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP caplog_bytes_written_total Encoded row bytes handed to the capture file writer, headers excluded.
# TYPE caplog_bytes_written_total counter
caplog_bytes_written_total{log="motor"} 12
caplog_bytes_written_total{log="pump"} 4
# HELP caplog_files_opened_total Capture files opened.
# TYPE caplog_files_opened_total counter
caplog_files_opened_total{log="motor"} 1
caplog_files_opened_total{log="pump"} 1
# HELP caplog_logging Whether the manager is logging (1) or stopped (0).
# TYPE caplog_logging gauge
caplog_logging 1
# HELP caplog_rotations_total Capture directory rotations performed by the manager.
# TYPE caplog_rotations_total counter
caplog_rotations_total 0
# HELP caplog_rows_recorded_total Rows handed to the capture file writer.
# TYPE caplog_rows_recorded_total counter
caplog_rows_recorded_total{log="motor"} 3
caplog_rows_recorded_total{log="pump"} 1
`)))

	require.NoError(t, m.Stop())
	require.Equal(t, 5, testutil.CollectAndCount(NewCollector(m)))
}

func TestCollector_PicksUpNewLogs(t *testing.T) {
	var a int32
	m, err := capture.NewManager(t.TempDir(), nil)
	require.NoError(t, err)

	c := NewCollector(m)
	require.Equal(t, 2, testutil.CollectAndCount(c))

	require.NoError(t, m.PushBack(newLog(t, "motor", &a)))
	require.Equal(t, 1, testutil.CollectAndCount(c, "caplog_rows_recorded_total"))
}
