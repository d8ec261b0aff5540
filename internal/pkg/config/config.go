package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values as durations of a fixed unit.
type TimeConfig interface {
	// GetMillisecond reads key as a number of milliseconds.
	GetMillisecond(key string) time.Duration
	// GetSecond reads key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads key as a number of minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or malformed keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint32(key string) uint32
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value; nil when missing or malformed.
	GetBinary(key string) []byte

	// GetArray splits a "<a>,<b>,..." value, dropping blank elements.
	GetArray(key string) []string
}
