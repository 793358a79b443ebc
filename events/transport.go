package events

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/kbukum/transcriptkit/errors"
)

var codecs = map[string]kafkago.Compression{
	"none":   0,
	"gzip":   kafkago.Gzip,
	"snappy": kafkago.Snappy,
	"lz4":    kafkago.Lz4,
	"zstd":   kafkago.Zstd,
}

// compression maps a config name to a kafka codec; unknown names use snappy.
func compression(name string) kafkago.Compression {
	if c, ok := codecs[name]; ok {
		return c
	}
	return kafkago.Snappy
}

// newTransport builds the broker transport for the publisher.
func newTransport(cfg *Config) (*kafkago.Transport, error) {
	tr := &kafkago.Transport{IdleTimeout: cfg.IdleTimeout, MetadataTTL: cfg.MetadataTTL}
	if cfg.EnableTLS {
		tc, err := tlsConfig(cfg)
		if err != nil {
			return nil, err
		}
		tr.TLS = tc
	}
	if cfg.EnableSASL {
		m, err := saslMechanism(cfg)
		if err != nil {
			return nil, err
		}
		tr.SASL = m
	}
	return tr, nil
}

func tlsConfig(cfg *Config) (*tls.Config, error) {
	tc := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: cfg.TLSSkipVerify} //nolint:gosec // opt-in for test brokers
	if cfg.TLSCAFile != "" {
		pem, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, errors.NotFound("CA file", cfg.TLSCAFile).WithCause(err)
		}
		tc.RootCAs = x509.NewCertPool()
		if !tc.RootCAs.AppendCertsFromPEM(pem) {
			return nil, errors.InvalidFormat("tls_ca_file", "PEM certificate")
		}
	}
	if cfg.TLSCertFile != "" {
		pair, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, errors.InvalidFormat("tls_cert_file", "PEM key pair").WithCause(err)
		}
		tc.Certificates = append(tc.Certificates, pair)
	}
	return tc, nil
}

func saslMechanism(cfg *Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256", "SCRAM-SHA-512":
		algo := scram.SHA256
		if cfg.SASLMechanism == "SCRAM-SHA-512" {
			algo = scram.SHA512
		}
		m, err := scram.Mechanism(algo, cfg.Username, cfg.Password)
		if err != nil {
			return nil, errors.InvalidInput("sasl_mechanism", err.Error())
		}
		return m, nil
	}
	return nil, errors.InvalidInput("sasl_mechanism", "unsupported mechanism "+cfg.SASLMechanism)
}
