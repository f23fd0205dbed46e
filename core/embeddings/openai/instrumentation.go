package openai

import "go.opentelemetry.io/otel"

const scopeName = "github.com/Cloudinfo-Github/call-center-ai/core/embeddings/openai"

var tracer = otel.Tracer(scopeName)
