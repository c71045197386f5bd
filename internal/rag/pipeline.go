// Package rag assembles retrieval-augmented answers for locked sessions.
//
// The pipeline takes its collaborators through an explicit Config at
// construction time. There is no process-wide "current pipeline": callers
// build one and pass it where it is needed, which keeps initialization
// order out of the picture.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultSystemPrompt constrains the model to the retrieved context.
const DefaultSystemPrompt = "You are a precise assistant. Respond using only the supplied context. " +
	"List the source for each fact as [source]."

// Document is one retrieved piece of context.
type Document struct {
	Source  string
	Content string
}

// Retriever fetches context documents for a query scoped to a project,
// optionally restricted to the given tags.
type Retriever interface {
	Retrieve(ctx context.Context, projectID, query string, filters []string) ([]Document, error)
}

// Model produces a completion from a system prompt and a user message.
type Model interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config is the dependency bundle for a Pipeline.
type Config struct {
	Model        Model
	Retriever    Retriever
	SystemPrompt string // DefaultSystemPrompt when empty
}

// Pipeline answers questions against a project's retrieved context.
type Pipeline struct {
	model     Model
	retriever Retriever
	system    string
}

func New(cfg Config) (*Pipeline, error) {
	if cfg.Model == nil {
		return nil, errors.New("rag: config needs a model")
	}
	if cfg.Retriever == nil {
		return nil, errors.New("rag: config needs a retriever")
	}
	system := cfg.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	return &Pipeline{model: cfg.Model, retriever: cfg.Retriever, system: system}, nil
}

// Answer retrieves context for the message and asks the model.
func (p *Pipeline) Answer(ctx context.Context, projectID, message string, filters []string) (string, error) {
	docs, err := p.retriever.Retrieve(ctx, projectID, message, filters)
	if err != nil {
		return "", fmt.Errorf("retrieve context for %s: %w", projectID, err)
	}
	user := fmt.Sprintf("Question: %s\n\nContext:\n%s", message, FormatDocuments(docs))
	answer, err := p.model.Complete(ctx, p.system, user)
	if err != nil {
		return "", fmt.Errorf("model completion: %w", err)
	}
	return answer, nil
}

// FormatDocuments renders retrieved documents as source-annotated blocks
// for the prompt.
func FormatDocuments(docs []Document) string {
	if len(docs) == 0 {
		return "[source: none]\nNo matching context found."
	}
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		source := doc.Source
		if source == "" {
			source = "unknown"
		}
		blocks = append(blocks, fmt.Sprintf("[source: %s]\n%s", source, doc.Content))
	}
	return strings.Join(blocks, "\n\n")
}
