package notify

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Config defines the connection parameters for the MQTT notifier.
type Config struct {
	Enabled     bool            `json:"enabled"`
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	ClaimTopic  string          `json:"claim_topic"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// SetDefaults fills in the topic layout and retry policy when unset.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "brewline"
	}
	if c.ClaimTopic == "" {
		c.ClaimTopic = c.TopicPrefix + "/claims"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks that an enabled notifier has a broker to talk to.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("notify: broker is required")
	}
	return nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}
