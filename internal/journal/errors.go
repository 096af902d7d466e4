package journal

import "errors"

// ErrUnknownEvent is returned by Decode for an unrecognized event type.
var ErrUnknownEvent = errors.New("journal: unknown event type")
