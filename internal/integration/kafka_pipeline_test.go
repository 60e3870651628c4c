//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/adapter/archive"
	"github.com/couchcryptid/metar-archive-etl/internal/adapter/filestore"
	"github.com/couchcryptid/metar-archive-etl/internal/adapter/kafka"
	"github.com/couchcryptid/metar-archive-etl/internal/config"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
	"github.com/couchcryptid/metar-archive-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-reports"

const archivePage = `<html><pre>
##########################################################
# Query made at 03/01/2024 10:00:00 UTC
##########################################################
202401010030 METAR VOGA 010030Z 12009KT CAVOK 28/22 Q1012 NOSIG=
202401010000 METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=
202401011200 SPECI VOGA 011200Z 27015G25KT 3000 TSRA FEW015CB 26/23 Q1010=
</pre></html>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("metar-archive-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestMonthPublishedToKafka runs one month from a stub archive through the
// orchestrator with the file store and the Kafka publisher as loaders.
func TestMonthPublishedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "VOGA", r.URL.Query().Get("lugar"))
		_, _ = w.Write([]byte(archivePage))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	store := filestore.New(t.TempDir(), false, nil, discardLogger())
	fetcher := archive.NewClient(srv.URL, "integration-test", 10*time.Second, discardLogger())
	policy := pipeline.Policy{Retry: pipeline.RetryPolicy{MaxAttempts: 1}}
	o := pipeline.New(fetcher, pipeline.Loaders{store, writer}, nil, discardLogger(), observability.NewMetricsForTesting(), policy, nil)

	unit, err := domain.NewFetchUnit("VOGA", 2024, 1, domain.ReportMETAR)
	require.NoError(t, err)

	result, _ := o.RunMonth(ctx, unit)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 3, result.Reports)
	assert.Equal(t, "METAR202401.txt", result.Filename)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	t.Cleanup(func() { _ = reader.Close() })

	wantKeys := []string{"VOGA-010000", "VOGA-010030", "VOGA-011200"}
	for i, want := range wantKeys {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, want, string(msg.Key))

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "METAR", headers["report_type"])
		assert.Equal(t, "VOGA", headers["station"])
		assert.Equal(t, "2024-01", headers["period"])

		var value kafka.ReportMessage
		require.NoError(t, json.Unmarshal(msg.Value, &value))
		assert.Equal(t, "VOGA", value.Station)
		assert.Contains(t, value.Text, want[len("VOGA-"):]+"Z")
	}
}
