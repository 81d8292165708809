// internal/common/camunda/client.go
package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"venue-routing/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultMessageTTL      = time.Hour
	defaultPublishAttempts = 3
	defaultPublishBackoff  = 500 * time.Millisecond
	maxPublishBackoff      = 5 * time.Second
)

// Client owns the gateway connection shared by the job workers and the
// callback dispatcher.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	MessageTTL             time.Duration
	PublishAttempts        int
	PublishBackoff         time.Duration
}

func (c *ClientConfig) applyDefaults() {
	if c.MessageTTL == 0 {
		c.MessageTTL = defaultMessageTTL
	}
	if c.PublishAttempts <= 0 {
		c.PublishAttempts = defaultPublishAttempts
	}
	if c.PublishBackoff <= 0 {
		c.PublishBackoff = defaultPublishBackoff
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = 10 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// NewClientWithConfig dials the gateway and fails unless the broker answers a
// topology request within ConnectionTimeout.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	config.applyDefaults()

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}
	if err := c.HealthCheck(context.Background()); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for opening job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the gateway for its topology. It also backs /ready.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe topology: %w", err)
	}
	return nil
}

// PublishMessage correlates name to the process instance waiting on
// correlationKey. The message id is derived from both, so a retried publish
// the broker already accepted is not buffered twice. Failures come back as
// NOTIFICATION_SEND_FAILED carrying the message name.
func (c *Client) PublishMessage(ctx context.Context, name, correlationKey string, variables map[string]interface{}) error {
	cmd, err := c.client.NewPublishMessageCommand().
		MessageName(name).
		CorrelationKey(correlationKey).
		MessageId(name + ":" + correlationKey).
		TimeToLive(c.config.MessageTTL).
		VariablesFromMap(variables)
	if err != nil {
		return publishError(name, correlationKey, 0, err)
	}

	attempts, err := c.retry(ctx, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
		_, err := cmd.Send(reqCtx)
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return err
	})
	if err != nil {
		return publishError(name, correlationKey, attempts, err)
	}
	return nil
}

// retry runs fn until it succeeds, fails permanently, or PublishAttempts is
// spent. It returns the number of attempts made.
func (c *Client) retry(ctx context.Context, fn func(context.Context) error) (int, error) {
	delay := c.config.PublishBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return attempt, nil
		}
		if !isTransient(err) || attempt >= c.config.PublishAttempts {
			return attempt, err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return attempt, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		}
		delay *= 2
		if delay > maxPublishBackoff {
			delay = maxPublishBackoff
		}
	}
}

// isTransient reports whether the gateway might accept the same request later.
func isTransient(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}

func publishError(name, correlationKey string, attempts int, err error) *errors.StandardError {
	return errors.NewNotificationSendFailedError("zeebe", err).
		WithMetadata("messageName", name).
		WithMetadata("correlationKey", correlationKey).
		WithMetadata("attempts", attempts).
		WithMetadata("grpcCode", status.Code(err).String())
}
