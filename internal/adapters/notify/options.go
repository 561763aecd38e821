package notify

// Option applies a configuration option to the Broadcaster.
type Option func(*Broadcaster)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}
