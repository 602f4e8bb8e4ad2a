package friendclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"FRIEND_SERVER_URL,default=ws://localhost:8001/ws"`
	Origin    string `env:"FRIEND_ORIGIN"`
	Colours   bool   `env:"FRIEND_COLOURS,default=true"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("friend config: %w", err)
	}
	return cfg, nil
}

// Dial opens the WebSocket connection described by cfg.
func Dial(ctx context.Context, cfg Config) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	if cfg.Origin != "" {
		headers.Set("Origin", cfg.Origin)
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.ServerURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.ServerURL, err)
	}
	return conn, nil
}

// Run sends every line read from in as a chat message and writes each
// incoming message to out through renderer. It returns nil when ctx is done,
// in is exhausted, or the server closes the connection normally. A failure
// reading in is returned once the connection is closed.
func Run(ctx context.Context, conn *websocket.Conn, in io.Reader, out io.Writer, renderer Renderer) error {
	defer conn.Close()

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if _, err := fmt.Fprintln(out, renderer.Render(string(data))); err != nil {
				readErr <- err
				return
			}
		}
	}()

	lines := make(chan string)
	inputErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		inputErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return closeGracefully(conn, readErr)

		case line, ok := <-lines:
			if !ok {
				if err := <-inputErr; err != nil {
					_ = closeGracefully(conn, readErr)
					return fmt.Errorf("read input: %w", err)
				}
				return closeGracefully(conn, readErr)
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return fmt.Errorf("send: %w", err)
			}

		case err := <-readErr:
			return connectionError(err)
		}
	}
}

// closeGracefully starts the close handshake and waits briefly for the
// server to answer.
func closeGracefully(conn *websocket.Conn, readErr <-chan error) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace)); err != nil {
		return nil
	}

	select {
	case err := <-readErr:
		return connectionError(err)
	case <-time.After(closeGrace):
		return nil
	}
}

func connectionError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("connection closed: %w", err)
}
