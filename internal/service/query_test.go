package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhq/docsearch/internal/domain"
)

type stubRetriever struct {
	assembled *domain.AssembledContext
	err       error
}

func (s *stubRetriever) Retrieve(ctx context.Context, collection, queryText string, k, maxContextChars int) (*domain.AssembledContext, error) {
	return s.assembled, s.err
}

type stubCompleter struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.answer, s.err
}

func TestAnswerQuestion_GeneratesFromContext(t *testing.T) {
	retriever := &stubRetriever{assembled: &domain.AssembledContext{
		Text: "Source: a.md (chunk 0, relevance 0.90)\nalpha is first",
		Attributions: []domain.Attribution{
			{SourceID: "a.md", ChunkIndex: 0, Score: 0.9},
		},
	}}
	completer := &stubCompleter{answer: "Alpha comes first."}
	svc := NewQueryService(retriever, completer)

	answer, err := svc.AnswerQuestion(context.Background(), "what is alpha?", "docs", 5, 4000)
	require.NoError(t, err)

	assert.Equal(t, "Alpha comes first.", answer.Text)
	assert.True(t, answer.Generated)
	assert.Len(t, answer.Attributions, 1)

	assert.Contains(t, completer.prompt, "alpha is first")
	assert.Contains(t, completer.prompt, "User question: what is alpha?")
	assert.Contains(t, completer.prompt, "based only on the provided context")
}

func TestAnswerQuestion_EmptyContextBypassesGeneration(t *testing.T) {
	retriever := &stubRetriever{assembled: &domain.AssembledContext{Reason: domain.ReasonNoResults}}
	completer := &stubCompleter{answer: "should not be called"}
	svc := NewQueryService(retriever, completer)

	answer, err := svc.AnswerQuestion(context.Background(), "anything", "docs", 5, 4000)
	require.NoError(t, err)

	assert.Equal(t, InsufficientContextAnswer, answer.Text)
	assert.False(t, answer.Generated)
	assert.Equal(t, domain.ReasonNoResults, answer.Reason)
	assert.Equal(t, 0, completer.calls)
}

func TestAnswerQuestion_RetrievalErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{err: domain.NewDomainError(
		domain.ErrCodeEmbeddingUnavailable, "embedding service unavailable")}
	svc := NewQueryService(retriever, &stubCompleter{})

	_, err := svc.AnswerQuestion(context.Background(), "q", "docs", 5, 4000)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestAnswerQuestion_GenerationErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{assembled: &domain.AssembledContext{Text: "some context"}}
	completer := &stubCompleter{err: domain.NewDomainError(
		domain.ErrCodeGenerationUnavailable, "generation service unavailable")}
	svc := NewQueryService(retriever, completer)

	_, err := svc.AnswerQuestion(context.Background(), "q", "docs", 5, 4000)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}
