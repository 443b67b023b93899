package audioio

import "context"

// Block is one capture buffer from the device, in the device's native
// sample rate.
type Block struct {
	Samples    []int16
	SampleRate int
}

// Source is a capture device. Start begins delivering blocks on the
// channel returned by Blocks; Stop halts delivery and releases the
// device synchronously. Stop and Close are idempotent.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Blocks() <-chan Block
	Close() error
}
