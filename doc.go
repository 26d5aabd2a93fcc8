/*
Package radion streams raw I/Q samples from an RTL2832U based receiver.

The hardware side exposes a callback-driven asynchronous transfer loop
with strict timing and buffer-lifetime rules. This package wraps it into
a safe streaming session: a dedicated goroutine runs the blocking loop,
every transfer is copied out of the borrowed buffer into a slot from a
fixed pool, and chunks are handed to the consumer through a bounded
channel with an explicit backpressure policy.

	transport, err := rtltcp.Dial("localhost:1234")
	if err != nil {
		// handle error
	}
	session, err := radion.NewSession(transport, device.Config{
		SampleRate: 2048000,
		CenterFreq: 100000000,
	})
	if err != nil {
		// handle error
	}
	if err := session.Start(); err != nil {
		// handle error
	}
	for event := range session.Events() {
		if event.Err != nil {
			// handle stream error
			continue
		}
		process(event.Chunk.Bytes())
		event.Chunk.Release()
	}
	session.Stop()

Stop is synchronous: it cancels the transfer loop, waits for the
dedicated goroutine to return and guarantees that no event is delivered
afterwards, so the device handle can be reconfigured or closed right
away.
*/
package radion
