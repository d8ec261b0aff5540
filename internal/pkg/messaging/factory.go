package messaging

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNSQ    = "nsq"
	DriverNATS   = "nats"
	DriverKafka  = "kafka"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions groups config for supported messaging backends.
type FactoryOptions struct {
	NSQ   NSQConfig
	Kafka KafkaConfig
	NATS  NATSConfig
}

// NewFromDriver constructs a Messaging implementation by driver name.
// An empty driver means none.
func NewFromDriver(driver string, opts FactoryOptions) (Messaging, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverMemory:
		return NewMemory(), nil
	case DriverNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
