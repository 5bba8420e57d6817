package inference_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ladybugs/bookbot/pkg/inference"
)

func testImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 32)})
		}
	}
	return img
}

func newClient(t *testing.T, baseURL string) *inference.Client {
	t.Helper()
	c, err := inference.NewClient(
		inference.WithBaseURL(baseURL),
		inference.WithAPIKey("test-key"),
		inference.WithRetry(2, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientVision(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("auth header = %q", got)
			}
			fmt.Fprint(w, `{
				"model": "gpt-4o",
				"choices": [{"message": {"role": "assistant", "content": "book_open"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 50, "completion_tokens": 3, "total_tokens": 53}
			}`)
		}))
		defer server.Close()

		c := newClient(t, server.URL)
		resp, err := c.Vision(context.Background(), &inference.VisionRequest{
			Image:  testImage(),
			Prompt: "classify the scene",
		})
		if err != nil {
			t.Fatalf("Vision: %v", err)
		}
		if resp.Content != "book_open" {
			t.Errorf("content = %q", resp.Content)
		}
		if resp.Usage.TotalTokens != 53 {
			t.Errorf("total tokens = %d", resp.Usage.TotalTokens)
		}
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}], "usage": {}}`)
		}))
		defer server.Close()

		c := newClient(t, server.URL)
		resp, err := c.Vision(context.Background(), &inference.VisionRequest{Image: testImage()})
		if err != nil {
			t.Fatalf("Vision: %v", err)
		}
		if resp.Content != "ok" {
			t.Errorf("content = %q", resp.Content)
		}
		if got := calls.Load(); got != 2 {
			t.Errorf("server calls = %d, want 2", got)
		}
	})

	t.Run("surfaces API errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"message": "bad key", "code": "invalid_api_key"}}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		c := newClient(t, server.URL)
		_, err := c.Vision(context.Background(), &inference.VisionRequest{Image: testImage()})
		var apiErr *inference.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want APIError", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "invalid_api_key" {
			t.Errorf("APIError = %+v", apiErr)
		}
		if apiErr.IsRetryable() {
			t.Error("401 reported as retryable")
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices": [], "usage": {}}`)
		}))
		defer server.Close()

		c := newClient(t, server.URL)
		_, err := c.Vision(context.Background(), &inference.VisionRequest{Image: testImage()})
		if !errors.Is(err, inference.ErrEmptyResponse) {
			t.Fatalf("error = %v, want ErrEmptyResponse", err)
		}
	})
}

func TestClientVisionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\": [{\"delta\": {\"content\": \"Once \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\": [{\"delta\": {\"content\": \"upon.\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\": [{\"delta\": {}, \"finish_reason\": \"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	stream, err := c.VisionStream(context.Background(), &inference.VisionRequest{Image: testImage()})
	if err != nil {
		t.Fatalf("VisionStream: %v", err)
	}
	defer stream.Close()

	var text string
	for {
		chunk, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		text += chunk.Delta
		if chunk.Done {
			break
		}
	}
	if text != "Once upon." {
		t.Errorf("streamed text = %q", text)
	}
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `{"data": []}`)
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
