package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type budget struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestGet_TypedDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]budget{{ID: 1, Title: "Rent"}, {ID: 2, Title: "Food"}})
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})

	resp, err := Get[[]budget](c, context.Background(), "/api/budgets/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(resp.Data))
	}
	if resp.Data[0].Title != "Rent" {
		t.Errorf("expected Rent, got %q", resp.Data[0].Title)
	}
}

func TestPost_TypedDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in budget
		json.NewDecoder(r.Body).Decode(&in)
		in.ID = 7
		w.WriteHeader(201)
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})

	resp, err := Post[budget](c, context.Background(), "/api/budgets/", budget{Title: "Travel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Data.ID != 7 {
		t.Errorf("expected server-assigned id 7, got %d", resp.Data.ID)
	}
}

func TestDelete_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})

	resp, err := Delete[struct{}](c, context.Background(), "/api/budgets/7/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}

func TestPost_ErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(`{"title": ["Title is required."]}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})

	_, err := Post[budget](c, context.Background(), "/api/budgets/", budget{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if FieldErrors(err)["title"] == nil {
		t.Error("expected title field error to survive typed helpers")
	}
}

func TestWithQueryParamAndHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
		if got := r.Header.Get("X-Trace"); got != "abc" {
			t.Errorf("expected X-Trace=abc, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})

	_, err := Get[[]budget](c, context.Background(), "/api/budgets/",
		WithQueryParam("page", "2"), WithHeader("X-Trace", "abc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
