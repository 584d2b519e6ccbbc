package client

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/r3labs/sse/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/cenkalti/backoff.v1"

	"github.com/charlie0129/batnotify/pkg/config"
	"github.com/charlie0129/batnotify/pkg/events"
	"github.com/charlie0129/batnotify/pkg/power"
	"github.com/charlie0129/batnotify/pkg/types"
)

func getJSON[T any](c *Client, path, what string) (*T, error) {
	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get %s", what)
	}

	var v T
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return &v, nil
}

func (c *Client) GetStatus() (*types.StatusResponse, error) {
	return getJSON[types.StatusResponse](c, "/status", "status")
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	return getJSON[config.RawFileConfig](c, "/config", "config")
}

func (c *Client) GetBatteryInfo() ([]power.BatteryInfo, error) {
	ret, err := getJSON[[]power.BatteryInfo](c, "/battery-info", "battery info")
	if err != nil {
		return nil, err
	}
	return *ret, nil
}

func (c *Client) GetPendingShutdowns() ([]time.Time, error) {
	ret, err := getJSON[[]time.Time](c, "/shutdown", "pending shutdowns")
	if err != nil {
		return nil, err
	}
	return *ret, nil
}

// AbortShutdown cancels every pending shutdown and returns how many there were.
func (c *Client) AbortShutdown() (int, error) {
	ret, err := c.Delete("/shutdown")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to abort shutdown")
	}

	var resp types.AbortResponse
	if err := json.Unmarshal([]byte(ret), &resp); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal abort response")
	}
	return resp.Cancelled, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

// eventBufferSize bounds a single event on the wire.
const eventBufferSize = 1 << 20

// SubscribeEvents calls handler for every daemon event until ctx is done or
// the daemon closes the stream. It does not reconnect.
func (c *Client) SubscribeEvents(ctx context.Context, handler func(events.Event)) error {
	sub := sse.NewClient("http://unix/events", sse.ClientMaxBufferSize(eventBufferSize))
	sub.Connection = c.httpClient
	sub.ReconnectStrategy = &backoff.StopBackOff{}

	err := sub.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		handler(events.Event{
			Name: string(msg.Event),
			Data: json.RawMessage(msg.Data),
		})
	})
	if ctx.Err() != nil {
		logrus.Debugf("event stream ended: %v", ctx.Err())
		return nil
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to subscribe to events")
	}
	return nil
}
