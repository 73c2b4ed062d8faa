package oracle

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// TokenBudget truncates prompts to a token limit before they reach the
// oracle. Tokenization uses tiktoken; if the encoding cannot be loaded the
// budget falls back to a rune-count estimate (~4 runes per token) and logs
// a warning once.
type TokenBudget struct {
	encoding string
	logger   *zap.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTokenBudget creates a TokenBudget for the given tiktoken encoding
// (e.g. "cl100k_base").
func NewTokenBudget(encoding string, logger *zap.Logger) *TokenBudget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenBudget{encoding: encoding, logger: logger}
}

func (b *TokenBudget) tokenizer() *tiktoken.Tiktoken {
	b.once.Do(func() {
		enc, err := tiktoken.GetEncoding(b.encoding)
		if err != nil {
			b.logger.Warn("tiktoken encoding unavailable, falling back to rune estimate",
				zap.String("encoding", b.encoding),
				zap.Error(err))
			return
		}
		b.enc = enc
	})
	return b.enc
}

// CountTokens returns the token count of text, estimated when the encoding
// is unavailable.
func (b *TokenBudget) CountTokens(text string) int {
	if enc := b.tokenizer(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// Truncate returns text cut to at most maxTokens tokens. maxTokens <= 0
// returns text unchanged.
func (b *TokenBudget) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	if enc := b.tokenizer(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		return enc.Decode(tokens[:maxTokens])
	}

	// Estimate path: keep roughly maxTokens*4 runes.
	runes := []rune(text)
	limit := maxTokens * 4
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func estimateTokens(text string) int {
	n := len([]rune(text)) / 4
	if n == 0 && text != "" {
		n = 1
	}
	return n
}
