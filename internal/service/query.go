package service

import (
	"context"
	"fmt"

	"github.com/meridianhq/docsearch/internal/domain"
)

// InsufficientContextAnswer is returned without calling the generation
// service when retrieval produced no usable context.
const InsufficientContextAnswer = "I couldn't find any relevant information to answer your question."

// Completer is the external generation collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever assembles a bounded context for a query.
type Retriever interface {
	Retrieve(ctx context.Context, collection, queryText string, k, maxContextChars int) (*domain.AssembledContext, error)
}

// QueryService answers questions with retrieval-augmented generation.
type QueryService struct {
	retriever Retriever
	completer Completer
}

// NewQueryService creates a new QueryService instance
func NewQueryService(retriever Retriever, completer Completer) *QueryService {
	return &QueryService{
		retriever: retriever,
		completer: completer,
	}
}

// AnswerQuestion retrieves context for the question and hands it to the
// generation service. An empty context bypasses generation and returns
// a fixed insufficient-context answer; generation failures are surfaced
// unchanged.
func (s *QueryService) AnswerQuestion(ctx context.Context, question, collection string, k, maxContextChars int) (*domain.Answer, error) {
	assembled, err := s.retriever.Retrieve(ctx, collection, question, k, maxContextChars)
	if err != nil {
		return nil, err
	}

	if assembled.Empty() {
		reason := assembled.Reason
		if reason == "" {
			reason = domain.ReasonNoResults
		}
		return &domain.Answer{
			Text:   InsufficientContextAnswer,
			Reason: reason,
		}, nil
	}

	text, err := s.completer.Complete(ctx, buildPrompt(question, assembled.Text))
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Text:         text,
		Attributions: assembled.Attributions,
		Generated:    true,
	}, nil
}

func buildPrompt(question, context string) string {
	return fmt.Sprintf(`You are a helpful AI assistant that answers questions based on the provided information.

Context information:
%s

User question: %s

Please answer the question based only on the provided context. If the context doesn't contain relevant information to answer the question, say so clearly. Your answer should be comprehensive, accurate, and helpful.

Answer:`, context, question)
}
