package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/Cloudinfo-Github/call-center-ai/core/audio"
	openaiembed "github.com/Cloudinfo-Github/call-center-ai/core/embeddings/openai"
	"github.com/Cloudinfo-Github/call-center-ai/core/knowledge"
	"github.com/Cloudinfo-Github/call-center-ai/core/realtime"
	openairt "github.com/Cloudinfo-Github/call-center-ai/core/realtime/openai"
	"github.com/Cloudinfo-Github/call-center-ai/core/tools"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// buildEngine assembles the knowledge engine the config describes. The
// returned cleanup releases any backing connections.
func buildEngine() (*knowledge.Engine, func(), error) {
	embedder := openaiembed.NewClient(
		openaiembed.WithAPIKey(cfg.OpenAI.APIKey),
		openaiembed.WithModel(cfg.OpenAI.EmbeddingModel),
	)

	cleanup := func() {}
	var store knowledge.Store

	switch cfg.Knowledge.Store {
	case "mongo":
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.Knowledge.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		cleanup = func() { _ = client.Disconnect(context.Background()) }
		store = knowledge.NewMongoStore(
			client.Database(cfg.Knowledge.MongoDatabase).Collection(cfg.Knowledge.MongoCollection),
		)
	default:
		store = knowledge.NewMemoryStore()
	}

	opts := []knowledge.EngineOption{
		knowledge.WithCacheTTL(time.Duration(cfg.Knowledge.CacheTTLMinutes) * time.Minute),
	}
	if cfg.Knowledge.RedisAddr != "" {
		opts = append(opts, knowledge.WithHotCache(
			redis.NewClient(&redis.Options{Addr: cfg.Knowledge.RedisAddr}),
		))
	}
	if cfg.Knowledge.MinSimilarity != nil {
		opts = append(opts, knowledge.WithMinSimilarity(*cfg.Knowledge.MinSimilarity))
	}

	return knowledge.NewEngine(embedder, store, opts...), cleanup, nil
}

// realtimeDialer opens realtime sessions with the configured API key.
func realtimeDialer() func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error) {
	client := openairt.NewClient(openairt.WithAPIKey(cfg.OpenAI.APIKey))
	return func(ctx context.Context, config realtime.SessionConfig) (realtime.Transport, error) {
		return client.Connect(ctx, config)
	}
}

// sessionOverrides maps the file config onto per-session options.
func sessionOverrides(declarations []tools.Declaration) []realtime.SessionOption {
	opts := []realtime.SessionOption{
		realtime.WithModel(cfg.OpenAI.Model),
		realtime.WithVoice(cfg.Session.Voice),
		realtime.WithTools(declarations...),
	}

	if cfg.Session.Instructions != "" {
		opts = append(opts, realtime.WithInstructions(cfg.Session.Instructions))
	}
	if cfg.Session.Temperature != nil {
		opts = append(opts, realtime.WithTemperature(*cfg.Session.Temperature))
	}
	if len(cfg.Session.Modalities) > 0 {
		opts = append(opts, realtime.WithModalities(cfg.Session.Modalities...))
	}

	switch format := audio.Format(cfg.Audio.Format); format {
	case audio.FormatG711Ulaw, audio.FormatG711Alaw:
		encoding := audio.EncodingInfo{SampleRate: audio.TelephonySampleRate, Format: format}
		opts = append(opts, realtime.WithInputAudio(encoding), realtime.WithOutputAudio(encoding))
	}

	return opts
}
