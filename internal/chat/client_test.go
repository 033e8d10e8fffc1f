package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStreamRelaysDeltas(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-1" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, part := range []string{
			`data: {"choices":[{"delta":{"content":"Try the "}}]}` + "\n\n",
			`data: {"choices":[{"delta":{"con`,
			`tent":"/spain-setup-calculator"}}]}` + "\n\n: ping\n\n",
			"data: [DONE]\n\n",
		} {
			_, _ = io.WriteString(w, part)
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "key-1", "test-model", nil, quietLogger())
	var deltas []string
	reply, err := client.Stream(context.Background(), []models.ChatMessage{{Role: "user", Content: "How do I start?"}}, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if reply != "Try the /spain-setup-calculator" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !reflect.DeepEqual(deltas, []string{"Try the ", "/spain-setup-calculator"}) {
		t.Fatalf("unexpected deltas: %#v", deltas)
	}
	if !got.Stream || got.Model != "test-model" {
		t.Fatalf("unexpected upstream request: %#v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "How do I start?" {
		t.Fatalf("unexpected upstream messages: %#v", got.Messages)
	}
}

func TestStreamWithoutDoneReturnsMessageAtEOF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `data: {"choices":[{"delta":{"content":"partial"}}]}`+"\n")
	}))
	defer server.Close()

	reply, err := NewClient(server.URL, "", "m", nil, quietLogger()).Stream(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if reply != "partial" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestStreamMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{status: http.StatusTooManyRequests, want: ErrRateLimited},
		{status: http.StatusPaymentRequired, want: ErrQuotaExceeded},
		{status: http.StatusInternalServerError, want: ErrTransport},
		{status: http.StatusUnauthorized, want: ErrTransport},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))
		_, err := NewClient(server.URL, "", "m", nil, quietLogger()).Stream(context.Background(), nil, nil)
		server.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestStreamTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, "", "m", nil, quietLogger()).Stream(context.Background(), nil, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	if !strings.Contains(UserMessage(ErrRateLimited), "Too many requests") {
		t.Fatalf("unexpected rate limit message: %q", UserMessage(ErrRateLimited))
	}
	if !strings.Contains(UserMessage(ErrQuotaExceeded), "unavailable") {
		t.Fatalf("unexpected quota message: %q", UserMessage(ErrQuotaExceeded))
	}
	if UserMessage(errors.New("x")) == UserMessage(ErrRateLimited) {
		t.Fatal("generic errors must not reuse the rate limit message")
	}
}
