package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testArtifact(t *testing.T) pipeline.Artifact {
	t.Helper()
	unit, err := domain.NewFetchUnit("VOGA", 2024, 1, domain.ReportMETAR)
	require.NoError(t, err)
	return pipeline.Artifact{
		Unit: unit,
		Text: "METAR VOGA 010000Z 12008KT CAVOK 28/22 Q1012 NOSIG=\n" +
			"METAR VOGA 010030Z 12009KT CAVOK 28/22 Q1012 NOSIG=",
		Reports: 2,
	}
}

func TestSerializeToMessage(t *testing.T) {
	unit, err := domain.NewFetchUnit("VOGA", 2024, 1, domain.ReportTAF)
	require.NoError(t, err)

	msg, err := serializeToMessage(unit, "TAF VOGA 010500Z 0106/0206 09008KT 9999 SCT020=")
	require.NoError(t, err)

	assert.Equal(t, []byte("VOGA-010500"), msg.Key)

	var value ReportMessage
	require.NoError(t, json.Unmarshal(msg.Value, &value))
	assert.Equal(t, "2024-01", value.Period)
	assert.Equal(t, domain.ReportTAF, value.ReportType)
	assert.Equal(t, "010500", value.Timestamp)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "report_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("TAF"), msg.Headers[0].Value)
	assert.Equal(t, "station", msg.Headers[1].Key)
	assert.Equal(t, "period", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-01"), msg.Headers[2].Value)
}

func TestWriter_LoadPublishesEveryReport(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, topic: "reports", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	loc, err := w.Load(context.Background(), testArtifact(t))
	require.NoError(t, err)

	assert.Equal(t, "kafka:reports", loc)
	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("VOGA-010000"), fw.msgs[0].Key)
	assert.Equal(t, []byte("VOGA-010030"), fw.msgs[1].Key)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_LoadEmptyArtifact(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, topic: "reports", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	loc, err := w.Load(context.Background(), pipeline.Artifact{})
	require.NoError(t, err)
	assert.Empty(t, loc)
	assert.Empty(t, fw.msgs)
}

func TestWriter_LoadError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("leader not available")}
	w := &Writer{writer: fw, topic: "reports", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	_, err := w.Load(context.Background(), testArtifact(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "METAR/VOGA/2024-01")
}
