// Package notify pushes dispatch lifecycle events to staff devices over MQTT
// and feeds their accept/pass responses back into the dispatcher.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/brewline/maitre/core/events"
	"github.com/brewline/maitre/infra/logger"
)

// Responder receives claim messages picked up from the claim topic. The
// dispatch orchestrator implements it.
type Responder interface {
	Accept(assignmentID, candidateID string) error
	Pass(assignmentID, candidateID string) error
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier publishes dispatch events to per-candidate and per-assignment
// topics. It implements events.Sink.
type Notifier struct {
	cli       pahoClient
	prefix    string
	qos       map[string]byte
	responder Responder
	logger    logger.Logger

	maxRetries int
	backoff    time.Duration
}

// New connects to the MQTT broker and, when responder is non-nil, subscribes
// to the claim topic so staff devices can accept or pass offers remotely.
func New(cfg Config, responder Responder) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("notifier")
	n := &Notifier{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		responder:  responder,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if n.responder == nil {
			return
		}
		qos := byte(0)
		if q, ok := n.qos["claim"]; ok {
			qos = q
		}
		if token := c.Subscribe(cfg.ClaimTopic, qos, n.onClaim); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	n.cli = c
	return n, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "maitre-" + uuid.NewString()
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

type claimMessage struct {
	AssignmentID string `json:"assignment_id"`
	CandidateID  string `json:"candidate_id"`
	Action       string `json:"action"`
}

func (n *Notifier) onClaim(_ paho.Client, msg paho.Message) {
	var m claimMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		n.logger.Errorf("failed to decode claim: %v", err)
		return
	}
	if m.AssignmentID == "" || m.CandidateID == "" {
		n.logger.Warnf("dropping claim with missing fields on %s", msg.Topic())
		return
	}
	var err error
	switch m.Action {
	case "accept":
		err = n.responder.Accept(m.AssignmentID, m.CandidateID)
	case "pass":
		err = n.responder.Pass(m.AssignmentID, m.CandidateID)
	default:
		n.logger.Warnf("unknown claim action %q for %s", m.Action, m.AssignmentID)
		return
	}
	if err != nil {
		n.logger.Infof("claim %s by %s rejected: %v", m.AssignmentID, m.CandidateID, err)
	}
}

// Publish maps a dispatch event onto its MQTT topic. Delivery failures are
// logged and never propagated to the dispatcher.
func (n *Notifier) Publish(e events.Event) {
	switch ev := e.(type) {
	case events.OfferMade:
		n.publish(n.staffTopic(ev.CandidateID, "offer"), "offer", offerPayload{
			AssignmentID: ev.AssignmentID,
			TaskID:       ev.Task.ID,
			TaskKind:     ev.Task.Kind.String(),
			TableID:      ev.Task.TableID,
			QueueIndex:   ev.QueueIndex,
			Deadline:     ev.Deadline.UnixMilli(),
		})
	case events.OfferTimedOut:
		n.publish(n.staffTopic(ev.CandidateID, "timeout"), "event", lifecyclePayload{
			AssignmentID: ev.AssignmentID,
			CandidateID:  ev.CandidateID,
			TaskID:       ev.Task.ID,
			Outcome:      "timed_out",
		})
	case events.OfferPassed:
		n.publish(n.assignmentTopic(ev.AssignmentID), "event", lifecyclePayload{
			AssignmentID: ev.AssignmentID,
			CandidateID:  ev.CandidateID,
			TaskID:       ev.Task.ID,
			Outcome:      "passed",
		})
	case events.CandidateSkipped:
		n.publish(n.assignmentTopic(ev.AssignmentID), "event", lifecyclePayload{
			AssignmentID: ev.AssignmentID,
			CandidateID:  ev.CandidateID,
			TaskID:       ev.Task.ID,
			Outcome:      "skipped",
		})
	case events.AssignmentAccepted:
		n.publish(n.assignmentTopic(ev.AssignmentID), "event", acceptedPayload{
			AssignmentID: ev.AssignmentID,
			CandidateID:  ev.CandidateID,
			TaskID:       ev.Task.ID,
			WaitedMS:     ev.WaitedFor.Milliseconds(),
		})
	case events.AssignmentExhausted:
		n.publish(n.prefix+"/alerts/exhausted", "alert", lifecyclePayload{
			AssignmentID: ev.AssignmentID,
			TaskID:       ev.Task.ID,
			Outcome:      "exhausted",
		})
	}
}

type offerPayload struct {
	AssignmentID string `json:"assignment_id"`
	TaskID       string `json:"task_id"`
	TaskKind     string `json:"task_kind"`
	TableID      string `json:"table_id"`
	QueueIndex   int    `json:"queue_index"`
	Deadline     int64  `json:"deadline_ms"`
}

type lifecyclePayload struct {
	AssignmentID string `json:"assignment_id"`
	CandidateID  string `json:"candidate_id,omitempty"`
	TaskID       string `json:"task_id"`
	Outcome      string `json:"outcome"`
}

type acceptedPayload struct {
	AssignmentID string `json:"assignment_id"`
	CandidateID  string `json:"candidate_id"`
	TaskID       string `json:"task_id"`
	WaitedMS     int64  `json:"waited_ms"`
}

func (n *Notifier) staffTopic(candidateID, kind string) string {
	return fmt.Sprintf("%s/staff/%s/%s", n.prefix, candidateID, kind)
}

func (n *Notifier) assignmentTopic(assignmentID string) string {
	return fmt.Sprintf("%s/assignments/%s/events", n.prefix, assignmentID)
}

func (n *Notifier) publish(topic, qosKey string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Errorf("marshal payload for %s: %v", topic, err)
		return
	}
	qos := byte(0)
	if q, ok := n.qos[qosKey]; ok {
		qos = q
	}
	var publishErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		token := n.cli.Publish(topic, qos, false, data)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.logger.Debugf("published to %s", topic)
			return
		}
		n.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		time.Sleep(n.backoff * time.Duration(1<<attempt))
	}
}

// Disconnect gracefully closes the MQTT connection.
func (n *Notifier) Disconnect() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
