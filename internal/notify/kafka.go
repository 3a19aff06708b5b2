package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes notifications as JSON events.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) Send(ctx context.Context, n Notification) error {
	msg, err := kafkaMessage(n)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *KafkaSink) Close() error { return k.writer.Close() }

// kafkaMessage keys single-product events by product id so they stay ordered.
func kafkaMessage(n Notification) (kafka.Message, error) {
	v, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, err
	}
	key := string(n.Kind)
	if len(n.ProductIDs) == 1 {
		key = strconv.FormatInt(n.ProductIDs[0], 10)
	}
	return kafka.Message{
		Key:   []byte(key),
		Value: v,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}, nil
}
