package classify

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/faturai/faturai-backend/internal/core/llm"
)

// Classifier maps a free-text merchant name to a category code. Two tiers:
// the keyword table first, then an optional model call constrained to the
// catalog codes. Classification is best-effort and never returns an error;
// an unclassifiable merchant simply stays uncategorized.
type Classifier struct {
	provider llm.Provider // nil disables the second tier
	codes    []string
	codeSet  map[string]bool
	timeout  time.Duration
}

// NewClassifier creates a classifier over the given catalog codes. provider
// may be nil, which leaves only the keyword tier.
func NewClassifier(provider llm.Provider, categoryCodes []string) *Classifier {
	codeSet := make(map[string]bool, len(categoryCodes))
	for _, code := range categoryCodes {
		codeSet[strings.ToUpper(code)] = true
	}
	return &Classifier{
		provider: provider,
		codes:    categoryCodes,
		codeSet:  codeSet,
		timeout:  4 * time.Second,
	}
}

// Classify returns the category code for the merchant, or ok=false when
// neither tier can place it.
func (c *Classifier) Classify(ctx context.Context, merchantName string) (string, bool) {
	if code, ok := c.classifyByKeyword(merchantName); ok {
		return code, true
	}
	return c.classifyByModel(ctx, merchantName)
}

// classifyByKeyword checks the static substring table. The longest matching
// keyword wins, so "mercado livre" beats "mercado". Accents are not
// normalized; the table carries unaccented variants instead.
func (c *Classifier) classifyByKeyword(merchantName string) (string, bool) {
	name := strings.ToLower(merchantName)
	best := ""
	bestCode := ""
	for keyword, code := range keywordTable {
		if len(keyword) <= len(best) || !strings.Contains(name, keyword) {
			continue
		}
		if len(c.codeSet) == 0 || c.codeSet[code] {
			best = keyword
			bestCode = code
		}
	}
	return bestCode, best != ""
}

func (c *Classifier) classifyByModel(ctx context.Context, merchantName string) (string, bool) {
	if c.provider == nil || len(c.codes) == 0 {
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	systemPrompt := "You classify Brazilian credit-card merchants into spending categories.\n" +
		"Answer with EXACTLY one of these codes and nothing else: " +
		strings.Join(c.codes, ", ") + "\n" +
		"If none fits, answer NONE."

	response, err := c.provider.GenerateResponse(callCtx, systemPrompt, merchantName)
	if err != nil {
		log.Warn().Err(err).Str("merchant", merchantName).Msg("model classification failed, leaving uncategorized")
		return "", false
	}

	code := strings.ToUpper(strings.TrimSpace(response))
	if !c.codeSet[code] {
		return "", false
	}
	return code, true
}
