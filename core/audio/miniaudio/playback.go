package miniaudio

import (
	"fmt"
	"sync"

	"github.com/Cloudinfo-Github/call-center-ai/core/audio"
	"github.com/gen2brain/malgo"
)

type playbackDevice struct {
	device *malgo.Device

	pending []byte

	mu      sync.Mutex
	audioMu sync.Mutex
}

func (p *playbackDevice) init(audioContext *malgo.AllocatedContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = sampleRate
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	config.Periods = 4

	device, err := malgo.InitDevice(
		audioContext.Context,
		config,
		malgo.DeviceCallbacks{Data: p.fillOutput(bytesPerFrame)},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	p.device = device
	return nil
}

func (p *playbackDevice) start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}
	if err := p.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

func (p *playbackDevice) stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}
	if err := p.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}

	p.clear()
	return nil
}

func (p *playbackDevice) enqueue(frame []byte) error {
	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}
	if !p.device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	p.audioMu.Lock()
	defer p.audioMu.Unlock()
	p.pending = append(p.pending, frame...)
	return nil
}

func (p *playbackDevice) clear() {
	p.audioMu.Lock()
	defer p.audioMu.Unlock()
	p.pending = nil
}

func (p *playbackDevice) uninit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return fmt.Errorf("device not initialized")
	}
	p.device.Uninit()
	p.device = nil
	return nil
}

// fillOutput drains the pending buffer into the device. The device
// zero-fills output it does not receive, so running short just plays
// silence.
func (p *playbackDevice) fillOutput(bytesPerFrame int) malgo.DataProc {
	return func(output, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		p.audioMu.Lock()
		defer p.audioMu.Unlock()

		if len(p.pending) == 0 {
			return
		}
		if len(p.pending) < need {
			copy(output, p.pending)
			p.pending = nil
			return
		}

		copy(output, p.pending[:need])
		p.pending = p.pending[need:]
	}
}
