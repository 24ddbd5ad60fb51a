package messaging

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/samber/lo"
)

const eventTypeHeader = "event-type"

func baseConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = "bike-dashboard"
	config.Net.DialTimeout = 10 * time.Second
	config.Net.ReadTimeout = 10 * time.Second
	config.Net.WriteTimeout = 10 * time.Second
	return config
}

// checkTopic connects to the broker and verifies the topic is known to the
// cluster.
func checkTopic(broker, topic string) error {
	config := baseConfig()
	config.Net.DialTimeout = 5 * time.Second

	client, err := sarama.NewClient([]string{broker}, config)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}
	defer client.Close()

	topics, err := client.Topics()
	if err != nil {
		return fmt.Errorf("failed to get topics: %w", err)
	}

	if !lo.Contains(topics, topic) {
		return fmt.Errorf("topic %s not found", topic)
	}
	return nil
}

func headerValue(headers []*sarama.RecordHeader, key string) string {
	h, ok := lo.Find(headers, func(h *sarama.RecordHeader) bool {
		return h != nil && string(h.Key) == key
	})
	if !ok {
		return ""
	}
	return string(h.Value)
}
