package chat

import (
	"context"

	"github.com/sharondevs/echo-chat/internal/client"
	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// clientTransport lifts *client.Client to the Transport interface; the
// concrete *client.Stream return type needs the explicit wrap.
type clientTransport struct {
	*client.Client
}

// NewTransport adapts the HTTP client for use by the controller.
func NewTransport(c *client.Client) Transport {
	return clientTransport{c}
}

func (t clientTransport) StreamChat(ctx context.Context, message string, mode chat.Mode, sessionID string) (EventStream, error) {
	stream, err := t.Client.StreamChat(ctx, message, mode, sessionID)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
