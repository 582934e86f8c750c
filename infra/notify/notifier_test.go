package notify

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/brewline/maitre/core/events"
	"github.com/brewline/maitre/core/model"
)

type recordedResponse struct {
	assignmentID string
	candidateID  string
	action       string
}

type stubResponder struct {
	responses []recordedResponse
	err       error
}

func (s *stubResponder) Accept(assignmentID, candidateID string) error {
	s.responses = append(s.responses, recordedResponse{assignmentID, candidateID, "accept"})
	return s.err
}

func (s *stubResponder) Pass(assignmentID, candidateID string) error {
	s.responses = append(s.responses, recordedResponse{assignmentID, candidateID, "pass"})
	return s.err
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func testTask() model.Task {
	return model.Task{ID: "task-1", Kind: model.TaskNewOrder, TableID: "t12", CreatedAt: time.Now()}
}

func TestNotifier_PublishOffer(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Enabled: true, Broker: "tcp://localhost:1883", QoS: map[string]byte{"offer": 1}}
	n, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	n.Publish(events.OfferMade{
		AssignmentID: "asg-1",
		CandidateID:  "w1",
		Task:         testTask(),
		QueueIndex:   0,
		Deadline:     deadline,
	})

	if len(mc.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(mc.published))
	}
	pub := mc.published[0]
	if pub.topic != "brewline/staff/w1/offer" {
		t.Errorf("unexpected topic %s", pub.topic)
	}
	if pub.qos != 1 {
		t.Errorf("qos not applied")
	}
	var p offerPayload
	if err := json.Unmarshal(pub.payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.AssignmentID != "asg-1" || p.TaskKind != "new_order" || p.TableID != "t12" {
		t.Errorf("unexpected payload %+v", p)
	}
	if p.Deadline != deadline.UnixMilli() {
		t.Errorf("deadline not forwarded")
	}
}

func TestNotifier_TopicPerEventType(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	n, err := New(Config{Enabled: true, Broker: "tcp://localhost:1883", TopicPrefix: "cafe"}, nil)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}

	task := testTask()
	n.Publish(events.OfferTimedOut{AssignmentID: "asg-1", CandidateID: "w1", Task: task})
	n.Publish(events.OfferPassed{AssignmentID: "asg-1", CandidateID: "w1", Task: task})
	n.Publish(events.AssignmentAccepted{AssignmentID: "asg-1", CandidateID: "w2", Task: task, WaitedFor: time.Second})
	n.Publish(events.AssignmentExhausted{AssignmentID: "asg-1", Task: task})

	want := []string{
		"cafe/staff/w1/timeout",
		"cafe/assignments/asg-1/events",
		"cafe/assignments/asg-1/events",
		"cafe/alerts/exhausted",
	}
	if len(mc.published) != len(want) {
		t.Fatalf("expected %d publishes, got %d", len(want), len(mc.published))
	}
	for i, w := range want {
		if mc.published[i].topic != w {
			t.Errorf("publish %d: topic %s, want %s", i, mc.published[i].topic, w)
		}
	}
}

func TestNotifier_ClaimRouting(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	resp := &stubResponder{}
	n, err := New(Config{Enabled: true, Broker: "tcp://localhost:1883", QoS: map[string]byte{"claim": 1}}, resp)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	if len(mc.subscribed) != 1 || mc.subscribed[0].topic != "brewline/claims" {
		t.Fatalf("claim topic not subscribed: %+v", mc.subscribed)
	}
	if mc.subscribed[0].qos != 1 {
		t.Errorf("subscribe qos not applied")
	}

	n.onClaim(nil, mockMessage{[]byte(`{"assignment_id":"asg-1","candidate_id":"w1","action":"accept"}`)})
	n.onClaim(nil, mockMessage{[]byte(`{"assignment_id":"asg-1","candidate_id":"w2","action":"pass"}`)})
	n.onClaim(nil, mockMessage{[]byte(`{"assignment_id":"asg-1","candidate_id":"w3","action":"snooze"}`)})
	n.onClaim(nil, mockMessage{[]byte(`not json`)})
	n.onClaim(nil, mockMessage{[]byte(`{"assignment_id":"asg-1","action":"accept"}`)})
	n.onClaim(nil, mockMessage{[]byte(`{"candidate_id":"w1","action":"pass"}`)})

	if len(resp.responses) != 2 {
		t.Fatalf("expected 2 routed claims, got %d", len(resp.responses))
	}
	if resp.responses[0] != (recordedResponse{"asg-1", "w1", "accept"}) {
		t.Errorf("unexpected first claim %+v", resp.responses[0])
	}
	if resp.responses[1] != (recordedResponse{"asg-1", "w2", "pass"}) {
		t.Errorf("unexpected second claim %+v", resp.responses[1])
	}
}

func TestNotifier_NoSubscribeWithoutResponder(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	if _, err := New(Config{Enabled: true, Broker: "tcp://localhost:1883"}, nil); err != nil {
		t.Fatalf("notifier: %v", err)
	}
	if len(mc.subscribed) != 0 {
		t.Fatalf("unexpected subscription without responder")
	}
}

func TestNotifier_RetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMockClient(t, mc)
	n, err := New(Config{Enabled: true, Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, nil)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	n.Publish(events.OfferMade{AssignmentID: "asg-1", CandidateID: "w1", Task: testTask()})
	if len(mc.published) != 2 {
		t.Fatalf("expected retry, got %d publishes", len(mc.published))
	}
}

func TestNotifier_LWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Enabled: true, Broker: "tcp://localhost:1883", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	n, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	n.Disconnect()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatalf("expected error for missing broker")
	}
	if err := (Config{Enabled: false}).Validate(); err != nil {
		t.Fatalf("disabled config should validate: %v", err)
	}
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts       *paho.ClientOptions
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic   string
		qos     byte
		payload []byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	data, _ := payload.([]byte)
	m.published = append(m.published, struct {
		topic   string
		qos     byte
		payload []byte
	}{topic, qos, data})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, _ paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
