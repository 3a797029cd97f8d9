//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"

	"github.com/couchcryptid/envmon-service/internal/adapter/mock"
	"github.com/couchcryptid/envmon-service/internal/domain"
	"github.com/couchcryptid/envmon-service/internal/query"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("envmon-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "get kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer func() { _ = ctrlConn.Close() }()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// reading is one raw payload from the mock dataset with the network it came from.
type reading struct {
	Kind    domain.Kind
	Payload []byte
}

// loadReadings returns every air, water and station reading of the mock dataset.
func loadReadings(t *testing.T) []reading {
	t.Helper()

	src, err := mock.New(discardLogger(), mock.WithDelay(0), mock.WithSeed(42))
	require.NoError(t, err)
	payloads := src.Payloads()

	endpoints := []struct {
		endpoint string
		kind     domain.Kind
	}{
		{query.EndpointAirQuality, domain.KindAir},
		{query.EndpointWaterQuality, domain.KindWater},
		{query.EndpointStationStatus, domain.KindStation},
	}

	var readings []reading
	for _, e := range endpoints {
		var items []json.RawMessage
		require.NoError(t, json.Unmarshal(payloads[e.endpoint], &items), "decode %s", e.endpoint)
		for _, item := range items {
			readings = append(readings, reading{Kind: e.kind, Payload: item})
		}
	}
	require.NotEmpty(t, readings)
	return readings
}
