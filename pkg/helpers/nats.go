package helpers

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// NatsPublish marshals the payload and publishes it on the subject. Urgent
// alerts, morning briefs and chat replies all go out through here, so every
// subscriber sees the same JSON encoding.
func NatsPublish(nc *nats.Conn, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return nc.Publish(subject, data)
}
