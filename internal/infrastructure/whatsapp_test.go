package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWhatsAppSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		w.WriteHeader(200)
	}))
	defer srv.Close()

	client := NewWhatsAppBusinessClient("tok-123", "5550001111")
	client.baseURL = srv.URL

	err := client.SendText(context.Background(), "+628111222333", "hello from leadflow")
	require.NoError(t, err)

	require.Equal(t, "/5550001111/messages", gotPath)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "whatsapp", gotBody["messaging_product"])
	require.Equal(t, "+628111222333", gotBody["to"])
	require.Equal(t, "text", gotBody["type"])
	text := gotBody["text"].(map[string]any)
	require.Equal(t, "hello from leadflow", text["body"])
}

func TestWhatsAppSendTextUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"bad token"}}`))
	}))
	defer srv.Close()

	client := NewWhatsAppBusinessClient("stale", "5550001111")
	client.baseURL = srv.URL

	err := client.SendText(context.Background(), "+628111222333", "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
	require.Contains(t, err.Error(), "bad token")
}

func TestWhatsAppSendTextCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	client := NewWhatsAppBusinessClient("tok", "555")
	client.baseURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.SendText(ctx, "+628111222333", "hi")
	require.Error(t, err)
}
