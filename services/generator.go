package services

import (
	"context"
	"fmt"
)

// Completer produces text for a prompt. Satisfied by ai.GeminiClient.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// FallbackAnswer is the exact phrase the model is instructed to emit
// when the context cannot answer the question.
const FallbackAnswer = "answer not available in context"

// IndexNotFoundMessage is returned for queries issued before any
// documents have been ingested.
const IndexNotFoundMessage = "Index not found. Please upload documents and ingest them first."

const answerPromptTemplate = `Answer the question as precise as possible using only the numbered context below. Think through the question step by step internally, but output only the final answer. Cite the context blocks that support your answer with their [Source N] labels. If the answer is not contained in the context, say "%s"

Context:
%s

Question: %s

Answer:`

// Generator builds the grounded answer prompt and invokes the completion
// model. The response text is returned verbatim; citation correctness is
// judged by the evaluator, not here.
type Generator struct {
	completer Completer
}

func NewGenerator(completer Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate answers the question from the composed context at the given
// temperature.
func (g *Generator) Generate(ctx context.Context, question, contextText string, temperature float64) (string, error) {
	prompt := fmt.Sprintf(answerPromptTemplate, FallbackAnswer, contextText, question)

	answer, err := g.completer.Complete(ctx, prompt, temperature)
	if err != nil {
		return "", fmt.Errorf("%w: generating answer: %v", ErrUpstream, err)
	}
	return answer, nil
}
