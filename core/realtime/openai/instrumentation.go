package openai

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/Cloudinfo-Github/call-center-ai/core/realtime/openai"

var logger = otelslog.NewLogger(scopeName)
