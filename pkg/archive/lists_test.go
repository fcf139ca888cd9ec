package archive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddToList(t *testing.T) {
	cfg := ListConfig{
		Parent:    "@curator",
		Name:      "culture-library",
		AccessKey: "ak",
		SecretKey: "sk",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		if got := r.Header.Get("Authorization"); got != "LOW ak:sk" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}

		if got := r.PostForm.Get("-target"); got != "simplelists" {
			t.Errorf("unexpected -target: %q", got)
		}

		var patch listPatch
		if err := json.Unmarshal([]byte(r.PostForm.Get("-patch")), &patch); err != nil {
			t.Fatalf("unmarshal patch: %v", err)
		}

		if patch.Op != "set" || patch.Parent != "@curator" || patch.List != "culture-library" {
			t.Errorf("unexpected patch: %+v", patch)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	err := client.AddToList(context.Background(), "nakedlunch00burr", cfg, map[string]any{
		"confidence_score": 95,
	})
	if err != nil {
		t.Fatalf("AddToList failed: %v", err)
	}
}

func TestAddToListRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"not authorized"}`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))

	err := client.AddToList(context.Background(), "x", ListConfig{Parent: "@p", Name: "l"}, nil)
	if err == nil {
		t.Fatal("expected error when API reports success=false")
	}
}

func TestCheckAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "LOW ak:sk" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		if got := r.URL.Query().Get("check_auth"); got != "1" {
			t.Errorf("expected check_auth=1, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"curator@example.org"}`))
	}))
	defer server.Close()

	client := New(WithS3BaseURL(server.URL))

	username, err := client.CheckAuth(context.Background(), ListConfig{AccessKey: "ak", SecretKey: "sk"})
	if err != nil {
		t.Fatalf("CheckAuth failed: %v", err)
	}

	if username != "curator@example.org" {
		t.Errorf("unexpected username: %q", username)
	}
}

func TestCheckAuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"invalid access key"}`))
	}))
	defer server.Close()

	client := New(WithS3BaseURL(server.URL))

	if _, err := client.CheckAuth(context.Background(), ListConfig{AccessKey: "bad", SecretKey: "bad"}); err == nil {
		t.Fatal("expected error when the endpoint rejects the keys")
	}
}

func TestCheckAuthHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := New(WithS3BaseURL(server.URL), WithRetries(0))

	if _, err := client.CheckAuth(context.Background(), ListConfig{}); err == nil {
		t.Fatal("expected error on HTTP 403")
	}
}

func TestListConfigFromEnvMissing(t *testing.T) {
	for _, v := range []string{"IA_ACCESS_KEY_ID", "IA_SECRET_ACCESS_KEY", "IA_LIST_PARENT", "IA_LIST_NAME"} {
		t.Setenv(v, "")
	}

	if _, err := ListConfigFromEnv(); err == nil {
		t.Fatal("expected error when credentials are unset")
	}
}

func TestListConfigFromEnv(t *testing.T) {
	t.Setenv("IA_ACCESS_KEY_ID", "ak")
	t.Setenv("IA_SECRET_ACCESS_KEY", "sk")
	t.Setenv("IA_LIST_PARENT", "@curator")
	t.Setenv("IA_LIST_NAME", "culture-library")

	cfg, err := ListConfigFromEnv()
	if err != nil {
		t.Fatalf("ListConfigFromEnv failed: %v", err)
	}

	if cfg.URL() != "https://archive.org/details/@curator/lists/culture-library" {
		t.Errorf("unexpected list URL: %s", cfg.URL())
	}
}
