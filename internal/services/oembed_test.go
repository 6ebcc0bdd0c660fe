package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/allplay/internal/shared"
)

func TestOEmbedService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewOEmbedService", func(t *testing.T) {
		if svc := NewOEmbedService("", nil); svc.baseURL != defaultOEmbedBaseURL {
			t.Errorf("expected default base URL, got %s", svc.baseURL)
		}
		if svc := NewOEmbedService("http://localhost:9000/", nil); svc.baseURL != "http://localhost:9000" {
			t.Errorf("expected trailing slash trimmed, got %s", svc.baseURL)
		}
	})

	t.Run("Lookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oembed" {
				t.Errorf("expected path /oembed, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("url"); got != "https://www.youtube.com/watch?v=vid123" {
				t.Errorf("unexpected url param %s", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"title": "Song A", "author_name": "Band", "thumbnail_url": "https://i.ytimg.com/vi/vid123/hqdefault.jpg"}`))
		}))
		defer server.Close()

		info, err := NewOEmbedService(server.URL, server.Client()).Lookup(ctx, "vid123")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if info.Title != "Song A" || info.AuthorName != "Band" {
			t.Errorf("unexpected info %+v", info)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			status  int
			body    string
			videoID string
			want    error
		}{
			{name: "empty id", videoID: " ", want: shared.ErrEmptyVideoID},
			{name: "not found", status: http.StatusNotFound, body: "Not Found", videoID: "gone", want: shared.ErrAPIRequest},
			{name: "bad json", status: http.StatusOK, body: "{", videoID: "vid", want: shared.ErrAPIRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				}))
				defer server.Close()

				_, err := NewOEmbedService(server.URL, server.Client()).Lookup(ctx, tt.videoID)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}
