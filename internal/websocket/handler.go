package websocket

import (
	"context"
	"time"

	"voice-agent-be/pkg/interaction"
)

const commandTimeout = 5 * time.Second

// Commander accepts the frames of one session.
type Commander interface {
	Do(ctx context.Context, ev interaction.Event) error
	Notify(ev interaction.Event)
	Done() <-chan struct{}
}

// ServeSession pumps frames between the client and a coordinator until the
// peer disconnects or the coordinator stops. touch runs for every inbound
// frame.
func ServeSession(client *Client, coordinator Commander, touch func()) {
	go client.writePump(coordinator.Done())
	client.readPump(func(f Frame) {
		if touch != nil {
			touch()
		}
		Dispatch(client, coordinator, f)
	})
}

// Dispatch hands one client frame to the coordinator. Refused commands and
// bad frames are answered with an error frame.
func Dispatch(client *Client, coordinator Commander, f Frame) {
	ev, command, err := f.Event()
	if err != nil {
		client.Push(ErrorFrame(err))
		return
	}

	if !command {
		coordinator.Notify(ev)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := coordinator.Do(ctx, ev); err != nil {
		client.Push(ErrorFrame(err))
	}
}
