package search

import (
	"context"
	"testing"

	"minuteminds/internal/gateway"
	"minuteminds/internal/services"
)

type fakeQuerier struct {
	results []gateway.SearchResult
	err     error
	calls   int
}

func (f *fakeQuerier) Search(ctx context.Context, query string) ([]gateway.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeAuth struct{ verified bool }

func (f *fakeAuth) Verified() bool { return f.verified }

func TestBlankQueryRejectedLocally(t *testing.T) {
	querier := &fakeQuerier{}
	svc := NewService(querier, &fakeAuth{verified: true}, nil)

	_, err := svc.Search(context.Background(), "   ")
	if !services.IsPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if querier.calls != 0 {
		t.Errorf("gateway called %d times for blank query", querier.calls)
	}
}

func TestSearchRequiresVerifiedSession(t *testing.T) {
	querier := &fakeQuerier{}
	svc := NewService(querier, &fakeAuth{}, nil)

	_, err := svc.Search(context.Background(), "budget")
	if !services.IsPrecondition(err) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if querier.calls != 0 {
		t.Errorf("gateway called %d times while unverified", querier.calls)
	}
}

func TestSearchDelegatesTrimmedQuery(t *testing.T) {
	querier := &fakeQuerier{results: []gateway.SearchResult{{ID: "doc1", Filename: "standup.wav"}}}
	svc := NewService(querier, &fakeAuth{verified: true}, nil)

	results, err := svc.Search(context.Background(), " budget ")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "doc1" {
		t.Errorf("results = %+v", results)
	}
}
