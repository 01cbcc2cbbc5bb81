package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/groundsched/core/metrics"
)

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "groundsched"

type counterMessage struct {
	Namespace  string            `json:"namespace"`
	Name       string            `json:"name"`
	Value      float64           `json:"value"`
	Unit       string            `json:"unit"`
	Timestamp  time.Time         `json:"timestamp"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

type searchMessage struct {
	Target        string    `json:"target"`
	Outcome       string    `json:"outcome"`
	GroundStation string    `json:"ground_station,omitempty"`
	Checks        int       `json:"checks"`
	ElapsedMS     int64     `json:"elapsed_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventSink publishes scheduling events as JSON so other systems can react
// to new contacts. Counters go to <prefix>/events/<name>, search summaries to
// <prefix>/searches/<outcome>.
type EventSink struct {
	pub    Publisher
	prefix string
}

// NewEventSink wraps pub. An empty prefix selects DefaultTopicPrefix.
func NewEventSink(pub Publisher, prefix string) *EventSink {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &EventSink{pub: pub, prefix: prefix}
}

func (s *EventSink) RecordCounter(ev metrics.CounterEvent) error {
	payload, err := json.Marshal(counterMessage{
		Namespace:  ev.Namespace,
		Name:       ev.Name,
		Value:      ev.Value,
		Unit:       ev.Unit,
		Timestamp:  ev.Time,
		Dimensions: ev.Dimensions,
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(fmt.Sprintf("%s/events/%s", s.prefix, ev.Name), payload)
}

func (s *EventSink) RecordSearch(ev metrics.SearchEvent) error {
	payload, err := json.Marshal(searchMessage{
		Target:        ev.Target,
		Outcome:       ev.Outcome,
		GroundStation: ev.ResourceID,
		Checks:        ev.Checks,
		ElapsedMS:     ev.Elapsed.Milliseconds(),
		Timestamp:     ev.Time,
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(fmt.Sprintf("%s/searches/%s", s.prefix, ev.Outcome), payload)
}

// Close disconnects the underlying publisher.
func (s *EventSink) Close() error {
	s.pub.Disconnect()
	return nil
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages map[string][][]byte
	Fail     bool
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][][]byte)}
}

// Publish records the message or returns an error if configured to fail.
func (m *MockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Messages[topic] = append(m.Messages[topic], payload)
	return nil
}

func (m *MockPublisher) Disconnect() {}
