package notify

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/postflow-app/postflow/internal/generation"
)

// MQTTNotifier pushes generation lifecycle events to a per-project topic so
// the frontend can update progress without polling.
type MQTTNotifier struct {
	client mqtt.Client
}

var _ generation.Notifier = (*MQTTNotifier)(nil)

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("mqtt connection lost")
}

func NewMQTTNotifier(brokerURL, clientID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Str("broker", brokerURL).Msg("mqtt notifier connected")
	return &MQTTNotifier{client: client}, nil
}

type generationEvent struct {
	Event        string `json:"event"`
	ProjectID    int    `json:"project_id"`
	CurrentBatch int    `json:"current_batch"`
	TotalBatches int    `json:"total_batches"`
	Percent      int    `json:"percent"`
}

// NotifyGeneration publishes fire-and-forget; a slow broker must not stall
// the worker, so the token is not awaited.
func (n *MQTTNotifier) NotifyGeneration(projectID int, event string, progress generation.Progress) {
	payload, err := json.Marshal(generationEvent{
		Event:        event,
		ProjectID:    projectID,
		CurrentBatch: progress.CurrentBatch,
		TotalBatches: progress.TotalBatches,
		Percent:      progress.Percent,
	})
	if err != nil {
		log.Error().Err(err).Int("project_id", projectID).Msg("failed to marshal generation event")
		return
	}

	topic := fmt.Sprintf("projects/%d/generation", projectID)
	n.client.Publish(topic, 0, false, payload)
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
