package realtime

import (
	"github.com/jinzhu/copier"

	"github.com/Cloudinfo-Github/call-center-ai/core/audio"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
)

const (
	DefaultModel       = "gpt-4o-realtime-preview"
	DefaultVoice       = "alloy"
	DefaultTemperature = 0.7
)

// SessionConfig is the immutable per-session configuration handed to the
// transport when the session is opened. Changing it requires opening a new
// session.
type SessionConfig struct {
	Model        string
	Voice        string
	Instructions string
	Tools        []tools.Declaration
	Modalities   []string
	Temperature  float64
	InputAudio   audio.EncodingInfo
	OutputAudio  audio.EncodingInfo
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Model:       DefaultModel,
		Voice:       DefaultVoice,
		Modalities:  []string{"audio", "text"},
		Temperature: DefaultTemperature,
		InputAudio:  audio.DefaultEncodingInfo(),
		OutputAudio: audio.DefaultEncodingInfo(),
	}
}

type SessionOption func(*SessionConfig)

// Merged deep-copies the config and applies overrides on top, field by
// field; later options win. The receiver is never mutated, so a config a
// running session was opened with stays frozen.
func (c SessionConfig) Merged(opts ...SessionOption) SessionConfig {
	var merged SessionConfig
	_ = copier.CopyWithOption(&merged, &c, copier.Option{DeepCopy: true})

	for _, opt := range opts {
		opt(&merged)
	}
	return merged
}

func WithModel(model string) SessionOption {
	return func(c *SessionConfig) { c.Model = model }
}

func WithVoice(voice string) SessionOption {
	return func(c *SessionConfig) { c.Voice = voice }
}

func WithInstructions(instructions string) SessionOption {
	return func(c *SessionConfig) { c.Instructions = instructions }
}

func WithTemperature(temperature float64) SessionOption {
	return func(c *SessionConfig) { c.Temperature = temperature }
}

func WithModalities(modalities ...string) SessionOption {
	return func(c *SessionConfig) { c.Modalities = modalities }
}

// WithTools replaces the declared tool schemas. Repeating this option
// overwrites the previous set.
func WithTools(declarations ...tools.Declaration) SessionOption {
	return func(c *SessionConfig) { c.Tools = declarations }
}

func WithInputAudio(encoding audio.EncodingInfo) SessionOption {
	return func(c *SessionConfig) { c.InputAudio = encoding }
}

func WithOutputAudio(encoding audio.EncodingInfo) SessionOption {
	return func(c *SessionConfig) { c.OutputAudio = encoding }
}
