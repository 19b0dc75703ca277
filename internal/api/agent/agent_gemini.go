package agent

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/go-flight-explorer/internal/api/generative_ai"
	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

var _ Extractor = (*GeminiExtractor)(nil)

// ContentGenerator is the part of the Gemini client the extractor needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ ContentGenerator = (*generativeAI.AIClient)(nil)

type GeminiExtractor struct {
	logger    *slog.Logger
	generator ContentGenerator
	config    *genai.GenerateContentConfig
}

func NewGeminiExtractor(generator ContentGenerator, temperature float32, maxTokens int32, logger *slog.Logger) *GeminiExtractor {
	return &GeminiExtractor{
		logger:    logger,
		generator: generator,
		config:    generativeAI.JSONConfig(temperature, maxTokens),
	}
}

func (g *GeminiExtractor) Name() string { return "gemini" }

func (g *GeminiExtractor) Extract(ctx context.Context, session *types.AgentSession, message string) (*types.AgentReply, error) {
	ctx, span := otel.Tracer("AgentExtractor").Start(ctx, "GeminiExtract", trace.WithAttributes(
		attribute.String("agent.session_id", session.ID.String()),
		attribute.Int("agent.history_turns", len(session.History)),
	))
	defer span.End()

	prompt := buildPrompt(session.History, message)
	text, err := g.generator.GenerateContent(ctx, prompt, g.config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gemini request failed")
		return nil, fmt.Errorf("failed to generate agent reply: %w", err)
	}

	reply, err := parseReply(text)
	if err != nil {
		g.logger.WarnContext(ctx, "Unparseable agent reply",
			slog.String("session_id", session.ID.String()),
			slog.Int("response_length", len(text)),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid agent reply")
		return nil, err
	}

	span.SetAttributes(attribute.Bool("agent.ready", reply.ReadyToSearch))
	span.SetStatus(codes.Ok, "reply extracted")
	return reply, nil
}
