package shtp

import "errors"

var (
	// ErrNoDataAvailable is returned by ReceivePacket when the hub has nothing
	// queued. It is the normal idle state of a polling loop.
	ErrNoDataAvailable = errors.New("shtp: no data available")

	// ErrParse marks a sensor-reports frame that is too short or truncated.
	// The whole frame is discarded.
	ErrParse = errors.New("shtp: malformed frame")

	// ErrUnknownChannel is returned for frames on a channel we do not decode.
	ErrUnknownChannel = errors.New("shtp: unknown channel")
)
