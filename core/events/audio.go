package events

// KindAudioDelta identifies a synthesized speech audio frame.
const KindAudioDelta Kind = "session.audio_delta"

// AudioDelta carries one decoded audio frame produced by the model.
type AudioDelta struct {
	Base
	Audio []byte
}

func NewAudioDelta(audio []byte) AudioDelta {
	return AudioDelta{Base: NewBase(KindAudioDelta), Audio: audio}
}
