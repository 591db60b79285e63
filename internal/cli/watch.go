package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/draftboard/internal/api/response"
)

func newWatchCmd() *cobra.Command {
	var maxMessages int

	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Follow a board over the API websocket",
		Long: `Connect to the session's websocket and print the board each time it changes.

The first message is the current board. Later messages follow every refresh,
filter change and draft change until the session is deleted.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return watchBoard(ctx, NewOutput(cfg.Output, cmd.OutOrStdout()), args[0], maxMessages)
		},
	}

	cmd.Flags().IntVar(&maxMessages, "max", 0, "Disconnect after this many messages (0 watches until closed)")

	return cmd
}

// websocketURL maps the server URL onto the ws scheme
func websocketURL(base, path string) (string, error) {
	u, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func watchBoard(ctx context.Context, out *Output, code string, maxMessages int) error {
	u, err := websocketURL(client.BaseURL(), sessionPath(code, "ws"))
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			defer func() { _ = resp.Body.Close() }()
			var errResp ErrorResponse
			if body, readErr := io.ReadAll(resp.Body); readErr == nil && json.Unmarshal(body, &errResp) == nil && errResp.Error.Code != "" {
				errResp.Error.Status = resp.StatusCode
				return &errResp.Error
			}
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock ReadMessage on Ctrl+C
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	seen := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var msg response.StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("invalid stream message: %w", err)
		}
		printStreamMessage(out, &msg)

		seen++
		if maxMessages > 0 && seen >= maxMessages {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

func printStreamMessage(out *Output, msg *response.StreamMessage) {
	if out.format == OutputJSON {
		// One compact message per line
		data, _ := json.Marshal(msg)
		fmt.Fprintln(out.w, string(data))
		return
	}

	fmt.Fprintf(out.w, "[%s] %s\n", msg.Timestamp.Local().Format("2006-01-02 15:04:05"), strings.ReplaceAll(msg.Type, "_", " "))
	if msg.Board != nil {
		out.printBoard(msg.Board)
		fmt.Fprintln(out.w)
	}
}
