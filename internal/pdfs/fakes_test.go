package pdfs

import (
	"context"
	"sync"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/llm"
)

type fakeExtractor struct {
	mu     sync.Mutex
	calls  int
	result extract.Result
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, mimeType string) (extract.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	reply    string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Text: f.reply, Model: "gpt-3.5-turbo"}, nil
}

func (f *fakeLLM) Model() string { return "gpt-3.5-turbo" }

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
