package push

import (
	"errors"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/dukerupert/bramble/internal/model"
)

// Sender sends one payload to one subscription. *Service satisfies it; tests
// substitute fakes.
type Sender interface {
	Send(sub *model.PushSubscription, payload Payload) error
}

// SubscriptionStore is the slice of the push store the dispatcher needs.
type SubscriptionStore interface {
	ListByMember(memberID int64) ([]model.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
}

// Dispatcher fans a payload out to every device a member has registered.
// Expired subscriptions are pruned as they are discovered.
type Dispatcher struct {
	sender Sender
	subs   SubscriptionStore
	logger *slog.Logger
}

func NewDispatcher(sender Sender, subs SubscriptionStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		subs:   subs,
		logger: logger,
	}
}

// SendToMember sends payload to each of the member's subscriptions. Send
// failures are collected rather than aborting the fan-out; the combined
// error is returned so callers can log it. A member with no subscriptions
// is not an error.
func (d *Dispatcher) SendToMember(memberID int64, payload Payload) error {
	subs, err := d.subs.ListByMember(memberID)
	if err != nil {
		return err
	}

	var sendErr error
	for i := range subs {
		sub := &subs[i]
		if err := d.sender.Send(sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if delErr := d.subs.DeleteByEndpoint(sub.Endpoint); delErr != nil {
					d.logger.Warn("prune expired subscription", "endpoint", sub.Endpoint, "error", delErr)
				}
				continue
			}
			sendErr = multierr.Append(sendErr, err)
		}
	}
	return sendErr
}
