package events

// KindTextDelta identifies a streamed response text segment.
const KindTextDelta Kind = "session.text_delta"

// TextDelta carries one append-only piece of the model's text response.
type TextDelta struct {
	Base
	Text string
}

func NewTextDelta(text string) TextDelta {
	return TextDelta{Base: NewBase(KindTextDelta), Text: text}
}
