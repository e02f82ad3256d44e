package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObservability(t *testing.T) (*Observability, *tracetest.SpanRecorder, *promclient.Registry) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	reg := promclient.NewRegistry()
	obs := New("pawsense-test", WithRegisterer(reg), WithSpanProcessor(recorder), WithoutGlobal())
	t.Cleanup(obs.Shutdown)
	return obs, recorder, reg
}

func TestStartSpan_RecordsNameAndAttributes(t *testing.T) {
	obs, recorder, _ := newTestObservability(t)

	ctx, span := obs.StartSpan(context.Background(), "chat.ask", attribute.String("intent", "medical"))
	require.NotNil(t, ctx)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "chat.ask", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("intent", "medical"))
}

func TestStartSpan_NestsUnderParent(t *testing.T) {
	obs, recorder, _ := newTestObservability(t)

	ctx, parent := obs.StartSpan(context.Background(), "chat.ask")
	_, child := obs.StartSpan(ctx, "chat.generate.attempt")
	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, parent.SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestRecordMetrics_Exported(t *testing.T) {
	obs, _, reg := newTestObservability(t)

	obs.RecordOutcome(context.Background(), "answered")
	obs.RecordStreamDuration(context.Background(), 150*time.Millisecond, "medical", "completed")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "chat_pipeline_outcomes")
	assert.Contains(t, joined, "chat_stream_duration")
}

func TestZeroValue_IsSafe(t *testing.T) {
	var obs Observability
	_, span := obs.StartSpan(context.Background(), "noop")
	span.End()
	obs.RecordOutcome(context.Background(), "answered")
	obs.RecordStreamDuration(context.Background(), time.Second, "general", "completed")
	obs.Shutdown()
}
