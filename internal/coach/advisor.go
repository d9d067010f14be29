package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Fallback answers used when the model cannot be reached or returns nothing.
const (
	FallbackUnavailable = "I can't connect to my advisory service right now. Try again in a few minutes."
	FallbackFailed      = "I had a problem analyzing your finances. Remember: saving is the foundation of wealth."
)

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Advice is the coach answer. Degraded is true when a fallback was used.
type Advice struct {
	Response string `json:"response"`
	Degraded bool   `json:"degraded"`
}

// Advisor turns a context into advice. Model failures never surface as
// errors; they yield a fallback answer instead.
type Advisor struct {
	gen Generator
	log zerolog.Logger
}

// NewAdvisor creates an advisor. gen may be nil when no model is configured.
func NewAdvisor(gen Generator, log zerolog.Logger) *Advisor {
	return &Advisor{gen: gen, log: log}
}

// SystemInstruction returns the coach persona for the user.
func SystemInstruction(c Context) string {
	nickname := c.User.Nickname
	if nickname == "" {
		nickname = "there"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ROLE: You are the financial coach of a mobile banking app. Your personality follows the user's archetype animal (%s).\n\n", c.User.Archetype.Label)
	b.WriteString("RULES:\n")
	b.WriteString("1. Be brief: at most two short paragraphs or three sentences.\n")
	b.WriteString("2. Use only real figures from the context: the liquidity from the core and the goal progress percentages.\n")
	b.WriteString("3. Match the tone of the archetype.\n")
	b.WriteString("4. Never mention data that is not in the context.\n")
	fmt.Fprintf(&b, "5. Greet %s by name and be encouraging.\n\n", nickname)
	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("- Greeting with the nickname.\n")
	b.WriteString("- A direct answer to the user's question if there is one, otherwise a proactive tip.\n")
	b.WriteString("- Encouragement about the nearest goal.\n")
	b.WriteString("- One closing question to keep the conversation going.")
	return b.String()
}

// Prompt renders the user turn: the context as JSON plus the optional question.
func Prompt(c Context, question string) (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("Prompt: marshal context: %w", err)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "Analyze this data and give me a proactive tip:\n" + string(data), nil
	}
	return "Financial context:\n" + string(data) + "\n\nUser question: " + question + "\n\nAnswer the question using the context.", nil
}

// Advise asks the model for advice.
func (a *Advisor) Advise(ctx context.Context, c Context, question string) Advice {
	if a.gen == nil {
		a.log.Warn().Str("client_code", c.ClientCode).Msg("No advisory model configured")
		return Advice{Response: FallbackUnavailable, Degraded: true}
	}

	prompt, err := Prompt(c, question)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to build coach prompt")
		return Advice{Response: FallbackFailed, Degraded: true}
	}

	text, err := a.gen.Generate(ctx, SystemInstruction(c), prompt)
	if err != nil {
		a.log.Error().Err(err).Str("client_code", c.ClientCode).Msg("Advisory model call failed")
		return Advice{Response: FallbackFailed, Degraded: true}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.log.Warn().Str("client_code", c.ClientCode).Msg("Advisory model returned an empty answer")
		return Advice{Response: FallbackFailed, Degraded: true}
	}
	return Advice{Response: text}
}
