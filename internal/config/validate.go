package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validStores := []string{"memory", "mongo"}
	if cfg.Knowledge.Store != "" && !slices.Contains(validStores, cfg.Knowledge.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "knowledge.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Knowledge.Store),
		})
	}
	if cfg.Knowledge.Store == "mongo" {
		if cfg.Knowledge.MongoURI == "" {
			issues = append(issues, ValidationIssue{
				Path:    "knowledge.mongoUri",
				Message: "required when knowledge.store is mongo",
			})
		}
		if cfg.Knowledge.MongoDatabase == "" || cfg.Knowledge.MongoCollection == "" {
			issues = append(issues, ValidationIssue{
				Path:    "knowledge.mongoDatabase",
				Message: "database and collection are required when knowledge.store is mongo",
			})
		}
	}
	if cfg.Knowledge.MinSimilarity != nil {
		if s := *cfg.Knowledge.MinSimilarity; s < 0 || s > 1 {
			issues = append(issues, ValidationIssue{
				Path:    "knowledge.minSimilarity",
				Message: fmt.Sprintf("must be between 0 and 1, got %g", s),
			})
		}
	}

	validFormats := []string{"pcm16", "g711_ulaw", "g711_alaw"}
	if cfg.Audio.Format != "" && !slices.Contains(validFormats, cfg.Audio.Format) {
		issues = append(issues, ValidationIssue{
			Path:    "audio.format",
			Message: fmt.Sprintf("must be one of %v, got %q", validFormats, cfg.Audio.Format),
		})
	}

	if cfg.Session.Temperature != nil {
		if t := *cfg.Session.Temperature; t < 0 || t > 2 {
			issues = append(issues, ValidationIssue{
				Path:    "session.temperature",
				Message: fmt.Sprintf("must be between 0 and 2, got %g", t),
			})
		}
	}

	return issues
}
