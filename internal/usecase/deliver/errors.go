package deliver

import "errors"

var (
	// ErrChannelDisabled is returned when Send is called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")
	// ErrNothingToDeliver is returned when no digests were handed to Deliver.
	ErrNothingToDeliver = errors.New("nothing to deliver")
)
