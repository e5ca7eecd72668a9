package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAsViewCountsLikes(t *testing.T) {
	p := Post{ID: "p1", Title: "Hi", Likes: []string{"u1", "u2", "u3"}}
	view := p.AsView()
	if view.Likes != 3 {
		t.Errorf("likes = %d, want 3", view.Likes)
	}
}

func TestLikerIDsNeverSerialized(t *testing.T) {
	p := Post{ID: "p1", Likes: []string{"secret-user-id"}}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "secret-user-id") {
		t.Error("liker ids leaked into post JSON")
	}
}
