package entity

import "errors"

// Backend errors shared by every Backend implementation.
var (
	ErrDeviceNotFound     = errors.New("oath: device not found")
	ErrDeviceNotConnected = errors.New("oath: device not connected")
	ErrPasswordRequired   = errors.New("oath: device password required")
	ErrWrongPassword      = errors.New("oath: wrong password")
)
