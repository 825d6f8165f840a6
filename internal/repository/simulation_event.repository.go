package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"propertysim/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const SimulationCompletedEventType = "SimulationCompleted"

type SimulationCompletedEvent struct {
	Type              string          `json:"type"`
	SimulationID      uuid.UUID       `json:"simulationID"`
	DealID            *uuid.UUID      `json:"dealID,omitempty"`
	Iterations        int             `json:"iterations"`
	Mode              domain.NpvMode  `json:"mode"`
	Decision          domain.Decision `json:"decision"`
	MedianNpv         float64         `json:"medianNpv"`
	P10Npv            float64         `json:"p10Npv"`
	P90Npv            float64         `json:"p90Npv"`
	ProbabilityOfLoss float64         `json:"probabilityOfLoss"`
	RunAt             time.Time       `json:"runAt"`
}

func NewSimulationCompletedEvent(r domain.SimulationResult) SimulationCompletedEvent {
	return SimulationCompletedEvent{
		Type:              SimulationCompletedEventType,
		SimulationID:      r.ID,
		DealID:            r.DealID,
		Iterations:        r.Iterations,
		Mode:              r.Mode,
		Decision:          r.Decision,
		MedianNpv:         r.Npv.Median,
		P10Npv:            r.Npv.P10,
		P90Npv:            r.Npv.P90,
		ProbabilityOfLoss: r.ProbabilityOfLoss,
		RunAt:             r.RunAt,
	}
}

type SimulationEventRepository interface {
	PublishCompleted(ctx context.Context, result domain.SimulationResult) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaSimulationEventRepositoryHandler struct {
	Writer messageWriter
}

// NewSimulationEventRepository publishes to Kafka, or drops events when
// no brokers are configured.
func NewSimulationEventRepository(brokers []string, topic string) SimulationEventRepository {
	if len(brokers) == 0 || topic == "" {
		return noopSimulationEventRepositoryHandler{}
	}
	return kafkaSimulationEventRepositoryHandler{
		Writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (h kafkaSimulationEventRepositoryHandler) PublishCompleted(ctx context.Context, result domain.SimulationResult) error {
	value, err := json.Marshal(NewSimulationCompletedEvent(result))
	if err != nil {
		return fmt.Errorf("failed to marshal simulation event: %w", err)
	}

	// keyed by deal so every run of a deal lands on one partition, in order
	key := result.ID.String()
	if result.DealID != nil {
		key = result.DealID.String()
	}

	err = h.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(SimulationCompletedEventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish simulation event %s: %w", result.ID.String(), err)
	}

	return nil
}

func (h kafkaSimulationEventRepositoryHandler) Close() error {
	return h.Writer.Close()
}

type noopSimulationEventRepositoryHandler struct{}

func (noopSimulationEventRepositoryHandler) PublishCompleted(context.Context, domain.SimulationResult) error {
	return nil
}

func (noopSimulationEventRepositoryHandler) Close() error {
	return nil
}
