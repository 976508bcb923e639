package ingestor

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

type Ingester interface {
	Ingest(ctx context.Context, filename string, raw []byte) (domain.Dataset, error)
}

// Handler stores CSV payloads published by plant gateways. The last topic
// segment is used as the dataset filename.
type Handler struct {
	svc     Ingester
	timeout time.Duration
}

func NewHandler(svc Ingester, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{svc: svc, timeout: timeout}
}

func FilenameFromTopic(topic string) string {
	name := path.Base(strings.TrimRight(topic, "/"))
	if name == "." || name == "/" || name == "" {
		name = "dataset"
	}
	if path.Ext(name) == "" {
		name += ".csv"
	}
	return name
}

func (h *Handler) Handle(ctx context.Context, topic string, payload []byte) (domain.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.svc.Ingest(ctx, FilenameFromTopic(topic), payload)
}

// MessageHandler adapts Handle to paho's callback. Failures are logged;
// a rejected payload is not redelivered.
func (h *Handler) MessageHandler(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		ds, err := h.Handle(ctx, msg.Topic(), msg.Payload())
		if err != nil {
			ev := log.Error()
			if domain.IsValidation(err) {
				ev = log.Warn()
			}
			ev.Err(err).Str("topic", msg.Topic()).Int("bytes", len(msg.Payload())).Msg("ingest failed")
			return
		}
		log.Info().Str("topic", msg.Topic()).Int64("dataset_id", ds.ID).Msg("dataset received")
	}
}

func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) { log.Info().Str("broker", broker).Msg("mqtt connected") }).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) { log.Warn().Err(err).Msg("mqtt connection lost") })
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

func Subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) error {
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

func Publish(client mqtt.Client, topic string, payload []byte) error {
	token := client.Publish(topic, 1, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
