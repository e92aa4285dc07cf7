package pubsub

import "errors"

// ErrShutdown is returned by Subscribe after the bus has shut down.
var ErrShutdown = errors.New("pubsub: bus is shut down")
