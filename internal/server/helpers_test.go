package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/friendchat/internal/server"
)

const testOriginURL = "http://localhost:8001"

// startTestServer runs a hub and an httptest server around it. Both are
// stopped when the test ends.
func startTestServer(t *testing.T, cfg *server.Config) (*server.Hub, *httptest.Server) {
	t.Helper()

	log, _ := logtest.NewNullLogger()
	hub := server.NewHub(cfg, log)
	go hub.Run()

	testServer := httptest.NewServer(server.SetupRoutes(hub))
	t.Cleanup(func() {
		_ = hub.Shutdown(2 * time.Second)
		testServer.Close()
	})
	return hub, testServer
}

func wsURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// connectWebSocket dials the hub behind serverURL with a browser-like Origin.
func connectWebSocket(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", testOriginURL)

	conn, resp, err := dialer.Dial(wsURL(serverURL), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// receiveTexts reads exactly n text frames from conn.
func receiveTexts(t *testing.T, conn *websocket.Conn, n int) []string {
	t.Helper()

	texts := make([]string, 0, n)
	for len(texts) < n {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		messageType, data, err := conn.ReadMessage()
		require.NoError(t, err, "after %d of %d messages: %v", len(texts), n, texts)
		require.Equal(t, websocket.TextMessage, messageType)
		texts = append(texts, string(data))
	}
	return texts
}

// expectNoMessage fails if conn receives anything within timeout.
func expectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected message %q", data)
}

func sendText(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

func closeWebSocket(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}
