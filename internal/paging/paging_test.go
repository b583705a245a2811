package paging

import (
	"net/url"
	"testing"
)

func TestFromQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  Page
	}{
		{"defaults", "", Page{Number: 1, Limit: 6}},
		{"explicit", "page=3&limit=10", Page{Number: 3, Limit: 10}},
		{"malformed", "page=x&limit=-2", Page{Number: 1, Limit: 6}},
		{"capped", "limit=1000", Page{Number: 1, Limit: MaxLimit}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			if got := FromQuery(values, 6); got != tt.want {
				t.Fatalf("FromQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestNewEnvelopeLinks(t *testing.T) {
	t.Parallel()

	base, _ := url.Parse("http://localhost/api/recipes/?limit=2&page=2&tags=lunch")
	env := NewEnvelope(base, Page{Number: 2, Limit: 2}, 5, []int{3, 4})

	if env.Count != 5 || len(env.Results) != 2 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Next == nil || *env.Next != "http://localhost/api/recipes/?limit=2&page=3&tags=lunch" {
		t.Fatalf("Next = %v", env.Next)
	}
	if env.Previous == nil || *env.Previous != "http://localhost/api/recipes/?limit=2&page=1&tags=lunch" {
		t.Fatalf("Previous = %v", env.Previous)
	}

	last := NewEnvelope(base, Page{Number: 3, Limit: 2}, 5, []int{5})
	if last.Next != nil {
		t.Fatalf("expected no next link on last page, got %q", *last.Next)
	}

	empty := NewEnvelope[int](base, Page{Number: 1, Limit: 2}, 0, nil)
	if empty.Results == nil || empty.Previous != nil || empty.Next != nil {
		t.Fatalf("unexpected empty envelope: %+v", empty)
	}
}
