package openai

import "github.com/Cloudinfo-Github/call-center-ai/core/tools"

// Client event shapes for the realtime wire protocol. Server events are left
// opaque; see [Session.Events].

type sessionUpdateMessage struct {
	Type    string          `json:"type"`
	Session sessionSettings `json:"session"`
}

type sessionSettings struct {
	Modalities        []string            `json:"modalities,omitempty"`
	Instructions      string              `json:"instructions,omitempty"`
	Voice             string              `json:"voice,omitempty"`
	InputAudioFormat  string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat string              `json:"output_audio_format,omitempty"`
	Temperature       float64             `json:"temperature,omitempty"`
	Tools             []tools.Declaration `json:"tools,omitempty"`
	ToolChoice        string              `json:"tool_choice,omitempty"`
	TurnDetection     *turnDetection      `json:"turn_detection,omitempty"`
}

type turnDetection struct {
	Type              string `json:"type"`
	SilenceDurationMs int    `json:"silence_duration_ms,omitempty"`
	InterruptResponse bool   `json:"interrupt_response,omitempty"`
}

type audioAppendMessage struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

type audioCommitMessage struct {
	Type string `json:"type"`
}

type itemCreateMessage struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id,omitempty"`
	Output string `json:"output,omitempty"`
}

type responseCreateMessage struct {
	Type string `json:"type"`
}
