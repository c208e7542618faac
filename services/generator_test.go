package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCompleter struct {
	response       string
	err            error
	gotPrompt      string
	gotTemperature float64
	calls          int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	s.gotPrompt = prompt
	s.gotTemperature = temperature
	s.calls++
	return s.response, s.err
}

func TestGeneratePromptContents(t *testing.T) {
	completer := &stubCompleter{response: "Paris [Source 1]"}
	generator := NewGenerator(completer)

	contextText := "[Source 1: geo.pdf, Page 2]\nParis is the capital of France.\n"
	answer, err := generator.Generate(context.Background(), "What is the capital of France?", contextText, 0.4)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "Paris [Source 1]" {
		t.Errorf("answer = %q", answer)
	}
	if completer.gotTemperature != 0.4 {
		t.Errorf("temperature = %f", completer.gotTemperature)
	}

	prompt := completer.gotPrompt
	for _, want := range []string{
		contextText,
		"Question: What is the capital of France?",
		`say "` + FallbackAnswer + `"`,
		"[Source N]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.HasSuffix(prompt, "Answer:") {
		t.Error("prompt must end with the answer cue")
	}
}

func TestGenerateReturnsAnswerVerbatim(t *testing.T) {
	// Leading and trailing whitespace from the model is preserved.
	completer := &stubCompleter{response: "  spaced answer \n"}
	generator := NewGenerator(completer)

	answer, err := generator.Generate(context.Background(), "q", "ctx", 0.7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "  spaced answer \n" {
		t.Errorf("answer altered: %q", answer)
	}
}

func TestGenerateWrapsCompleterError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("quota exhausted")}
	generator := NewGenerator(completer)

	_, err := generator.Generate(context.Background(), "q", "ctx", 0.7)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("cause lost: %v", err)
	}
}
