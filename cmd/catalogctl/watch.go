package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		url    string
		pretty bool
		retry  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream catalog and image events from a running API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for {
				err := streamEvents(ctx, url, cmd.OutOrStdout(), pretty)
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Warn("event stream disconnected", zap.String("url", url), zap.Error(err))

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(retry):
				}
			}
		},
	}

	cmd.Flags().StringVar(&url, "server", "ws://127.0.0.1:5000/ws", "websocket endpoint of the API server")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "pretty print JSON events")
	cmd.Flags().DurationVar(&retry, "retry", time.Second, "delay before reconnecting")
	return cmd
}

// streamEvents copies events from one websocket connection to w until the
// connection drops or ctx ends.
func streamEvents(ctx context.Context, url string, w io.Writer, pretty bool) error {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if !pretty {
			fmt.Fprintln(w, string(msg))
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			// not JSON, print raw
			fmt.Fprintln(w, string(msg))
			continue
		}
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	}
}
