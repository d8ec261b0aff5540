// Package messaging is a small broker-agnostic publish/consume layer over
// NATS, NSQ and Kafka, plus an in-process broker for tests and a no-op
// driver for setups without a broker.
//
// Consume blocks until its context is cancelled. Handlers run with panic
// recovery; with WithAutoAck the wrapper acks on success and nacks on error.
package messaging
