// Package miniaudio provides microphone capture and speaker playback
// for the demo CLI. Devices run at the realtime session's default
// encoding, so captured frames can be forwarded without resampling.
package miniaudio

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/Cloudinfo-Github/call-center-ai/core/audio"
	"github.com/gen2brain/malgo"
)

const channels = 1

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	capture      captureDevice
	playback     playbackDevice
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := &Client{audioContext: audioCtx}

	if err := client.playback.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := client.playback.start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}
	if err := client.capture.init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return client, nil
}

// Capture starts the microphone and returns an iterator over its
// frames. Iteration ends when ctx is cancelled or the consumer breaks
// out. Frames the consumer is too slow to take are dropped rather than
// stalling the device callback.
func (c *Client) Capture(ctx context.Context) (iter.Seq[[]byte], error) {
	frames := make(chan []byte, 32)
	err := c.capture.start(func(frame []byte) {
		select {
		case frames <- slices.Clone(frame):
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}

	return func(yield func([]byte) bool) {
		defer c.capture.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-frames:
				if !yield(frame) {
					return
				}
			}
		}
	}, nil
}

// Play queues synthesized audio for the speaker.
func (c *Client) Play(frame []byte) error {
	return c.playback.enqueue(frame)
}

// ClearPlayback drops queued but unplayed audio. Called when the
// caller interrupts the assistant mid-sentence.
func (c *Client) ClearPlayback() {
	c.playback.clear()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.DefaultEncodingInfo()
}

func (c *Client) Close() {
	_ = c.capture.uninit()
	_ = c.playback.uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}
