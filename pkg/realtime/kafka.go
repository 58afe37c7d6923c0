package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/exp/slog"
)

const (
	kafkaWorkers = 2
	kafkaBuffer  = 256
)

// MessageWriter is the subset of *kafka.Writer used by KafkaSink
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink streams every event to a Kafka topic, keyed by event name
type KafkaSink struct {
	writer MessageWriter
	topic  string
	jobs   chan kafka.Message
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewKafkaSink creates a sink writing to topic on brokers. It returns nil
// when no brokers are configured.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}, topic)
}

// NewKafkaSinkWithWriter creates a sink over an existing writer
func NewKafkaSinkWithWriter(w MessageWriter, topic string) *KafkaSink {
	s := &KafkaSink{
		writer: w,
		topic:  topic,
		jobs:   make(chan kafka.Message, kafkaBuffer),
	}
	for i := 0; i < kafkaWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Publish enqueues an event. Events are dropped when the queue is full.
func (s *KafkaSink) Publish(event string, payload interface{}) {
	if s == nil {
		return
	}
	value, err := encode(event, payload)
	if err != nil {
		slog.Error("Failed to encode event for kafka", "event", event, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.jobs <- kafka.Message{Topic: s.topic, Key: []byte(event), Value: value, Time: time.Now()}:
	default:
		slog.Warn("Kafka queue full, dropping event", "event", event)
	}
}

// Close drains the queue and closes the writer
func (s *KafkaSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()

	s.wg.Wait()
	return s.writer.Close()
}

func (s *KafkaSink) worker() {
	defer s.wg.Done()
	for msg := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.writer.WriteMessages(ctx, msg); err != nil {
			slog.Error("Failed to send event to kafka", "topic", msg.Topic, "event", string(msg.Key), "error", err)
		}
		cancel()
	}
}
