package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/docqa/pkg/log"
)

type ChatConfig struct {
	// Session history store
	MaxSessions           int           `env:"CHAT_MAX_SESSIONS" envDefault:"1000"`
	MaxMessagesPerSession int           `env:"CHAT_MAX_MESSAGES_PER_SESSION" envDefault:"100"`
	SessionTTLSeconds     int           `env:"CHAT_SESSION_TTL_SECONDS" envDefault:"3600"`
	SweepInterval         time.Duration `env:"CHAT_SWEEP_INTERVAL" envDefault:"5m"`
	HistoryEnabled        bool          `env:"CHAT_HISTORY_ENABLED" envDefault:"true"`

	// Retrieval
	TopK          int     `env:"CHAT_TOP_K" envDefault:"10"`
	MinSimilarity float64 `env:"CHAT_MIN_SIMILARITY" envDefault:"0.3"`

	// Sanitisation limits
	MaxQuestionChars int `env:"CHAT_MAX_QUESTION_CHARS" envDefault:"2000"`
	MaxAnswerChars   int `env:"CHAT_MAX_ANSWER_CHARS" envDefault:"10000"`
	MaxContextChars  int `env:"CHAT_MAX_CONTEXT_CHARS" envDefault:"8000"`
}

func NewChatConfig(ctx context.Context) *ChatConfig {
	c := &ChatConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Chat config")
	}
	return c
}

func (c ChatConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}
