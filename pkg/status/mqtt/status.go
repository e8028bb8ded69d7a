package mqtt

import (
	"context"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/splitkbd/pkg/status"
)

// StatusTopicSuffix is the last level of status topics.
const StatusTopicSuffix = "/status"

// StatusTopic returns the status topic of a device.
func StatusTopic(deviceID string) string {
	return deviceID + StatusTopicSuffix
}

// PubQueue publishes messages.
type PubQueue interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher implements status.Publisher. Snapshots are retained so new
// monitors get the latest one.
type Publisher struct {
	Queue PubQueue
	QoS   byte
}

// NewPublisher creates a Publisher.
func NewPublisher(q PubQueue) *Publisher {
	return &Publisher{Queue: q}
}

// Publish implements status.Publisher.
func (p *Publisher) Publish(ctx context.Context, s *status.Snapshot) error {
	payload, err := status.Encode(s)
	if err != nil {
		return err
	}
	return WaitToken(ctx, p.Queue.PubWith(StatusTopic(s.DeviceID), payload, p.QoS, true))
}

// StatusHandler receives decoded snapshots.
type StatusHandler func(deviceID string, s *status.Snapshot)

// SubscribeStatus subscribes status of all devices.
func SubscribeStatus(q *Queue, handler StatusHandler) *Subscription {
	return q.Sub("+"+StatusTopicSuffix, statusDecoder(handler))
}

func statusDecoder(handler StatusHandler) Handler {
	return func(topic string, payload []byte) {
		s, err := status.Decode(payload)
		if err != nil {
			glog.Warningf("%s: bad status: %v", topic, err)
			return
		}
		handler(strings.TrimSuffix(topic, StatusTopicSuffix), s)
	}
}
