package services

import (
	"context"
	"strings"
	"sync"

	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/domain/providers"
)

// stubCompletion answers from a responder and records every request.
type stubCompletion struct {
	mu        sync.Mutex
	requests  []providers.CompletionRequest
	responder func(req providers.CompletionRequest) (string, error)
}

func (s *stubCompletion) Complete(ctx context.Context, req providers.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.responder == nil {
		return "", nil
	}
	return s.responder(req)
}

func (s *stubCompletion) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubCompletion) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return ""
	}
	return s.requests[len(s.requests)-1].Prompt
}

func fixedCompletion(answer string) *stubCompletion {
	return &stubCompletion{responder: func(providers.CompletionRequest) (string, error) {
		return answer, nil
	}}
}

// stubStore is an in-memory PatientRecordStore.
type stubStore struct {
	records map[string]entities.PatientRecord
	err     error
	lookups []string
}

func (s *stubStore) GetByKey(ctx context.Context, table, key string) (entities.PatientRecord, error) {
	s.lookups = append(s.lookups, table+"/"+key)
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[key]
	if !ok {
		return nil, providers.ErrRecordNotFound
	}
	return rec, nil
}

type stubGuidelines struct {
	guidelines []entities.Guideline
	err        error
	queries    []string
}

func (s *stubGuidelines) SearchGuidelines(ctx context.Context, query string, limit int) ([]entities.Guideline, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.guidelines) {
		return s.guidelines[:limit], nil
	}
	return s.guidelines, nil
}

// medicalModel imitates the three prompts well enough for end-to-end tests:
// it classifies by keyword, returns canned guidance and answers from the supplied content.
func medicalModel() *stubCompletion {
	return &stubCompletion{responder: func(req providers.CompletionRequest) (string, error) {
		p := req.Prompt
		switch {
		case strings.HasPrefix(p, "Classify the following medical query"):
			q := strings.ToLower(p[strings.Index(p, "Query: "):])
			switch {
			case strings.Contains(q, "blood type"):
				return "dynamo", nil
			case strings.Contains(q, "protocol"):
				return " KB ", nil
			default:
				return "both", nil
			}
		case strings.HasPrefix(p, "You are a medical knowledge assistant."):
			return `{"guideline": "Surviving Sepsis Campaign: lactate, cultures, antibiotics within 1 hour, 30 mL/kg crystalloid."}`, nil
		case strings.HasPrefix(p, "You are a professional medical assistant."):
			switch {
			case strings.Contains(p, `"bloodType":"O+"`):
				return "The patient's blood type is O+.", nil
			case strings.Contains(p, "Surviving Sepsis Campaign"):
				return "Per the Surviving Sepsis Campaign: measure lactate, draw cultures, give antibiotics within 1 hour and 30 mL/kg crystalloid.", nil
			case strings.Contains(p, entities.KnowledgeDeniedMessage):
				return entities.KnowledgeDeniedMessage, nil
			}
			return "\"Insufficient context\"", nil
		}
		return "", nil
	}}
}

func failingCompletion(err error) *stubCompletion {
	return &stubCompletion{responder: func(providers.CompletionRequest) (string, error) {
		return "", err
	}}
}
