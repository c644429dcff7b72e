package rpcledger

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/sirupsen/logrus"
)

const (
	defaultResubscribeAttempts = 10
	defaultResubscribeBackoff  = 250 * time.Millisecond
	maxResubscribeBackoff      = 5 * time.Second
)

// OnAccountChange forwards every change of account to fn from a dedicated
// goroutine until the listener is removed. A dropped connection is reopened
// and the account resubscribed under the same id.
func (l *Ledger) OnAccountChange(ctx context.Context, account solana.PublicKey, fn ports.AccountChangeFunc) (ports.SubscriptionID, error) {
	client, stream, err := l.subscribe(ctx, account)
	if err != nil {
		return 0, err
	}

	subCtx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		account: account,
		client:  client,
		stream:  stream,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.subs[id] = sub
	l.mu.Unlock()

	go l.forward(subCtx, id, sub, fn)

	return id, nil
}

// RemoveAccountChangeListener stops the subscription and waits for its
// goroutine, so fn is never called once it returns.
func (l *Ledger) RemoveAccountChangeListener(id ports.SubscriptionID) error {
	l.mu.Lock()
	sub, ok := l.subs[id]
	delete(l.subs, id)
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSubscription, id)
	}

	sub.cancel()
	<-sub.done
	// Only the forwarding goroutine swaps the stream, and it has exited.
	if sub.stream != nil {
		sub.stream.Unsubscribe()
	}

	return nil
}

func (l *Ledger) subscribe(ctx context.Context, account solana.PublicKey) (*ws.Client, *ws.AccountSubscription, error) {
	client, err := l.connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	stream, err := client.AccountSubscribe(account, l.cfg.Commitment)
	if err != nil {
		l.dropClient(client)
		return nil, nil, fmt.Errorf("subscribe to account %s: %w", account, err)
	}

	return client, stream, nil
}

func (l *Ledger) connect(ctx context.Context) (*ws.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ws != nil {
		return l.ws, nil
	}

	client, err := ws.Connect(ctx, l.cfg.WSEndpoint)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", l.cfg.WSEndpoint, err)
	}
	l.ws = client

	return client, nil
}

// dropClient forgets a broken connection unless another subscription already
// replaced it.
func (l *Ledger) dropClient(client *ws.Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ws == client {
		l.ws.Close()
		l.ws = nil
	}
}

func (l *Ledger) forward(ctx context.Context, id ports.SubscriptionID, sub *subscription, fn ports.AccountChangeFunc) {
	defer close(sub.done)

	log := l.log.WithFields(logrus.Fields{"subscription": id, "account": sub.account.String()})
	for {
		got, err := sub.stream.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("account subscription dropped, resubscribing")
			if !l.resubscribe(ctx, sub, fn, log) {
				return
			}
			continue
		}
		if got == nil || got.Value.Data == nil {
			continue
		}

		fn(got.Value.Data.GetBinary())
	}
}

// resubscribe reopens the connection with exponential backoff. Changes missed
// while disconnected are caught up with one fresh read of the account.
func (l *Ledger) resubscribe(ctx context.Context, sub *subscription, fn ports.AccountChangeFunc, log logrus.FieldLogger) bool {
	l.dropClient(sub.client)
	sub.stream.Unsubscribe()
	sub.stream = nil

	backoff := l.cfg.ResubscribeBackoff
	for attempt := 1; attempt <= l.cfg.ResubscribeAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		client, stream, err := l.subscribe(ctx, sub.account)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			log.WithError(err).WithField("attempt", attempt).Warn("resubscribe failed")
			backoff = min(2*backoff, maxResubscribeBackoff)
			continue
		}

		sub.client, sub.stream = client, stream
		log.WithField("attempt", attempt).Info("account subscription restored")

		if data, err := l.AccountData(ctx, sub.account); err == nil {
			fn(data)
		} else if ctx.Err() == nil {
			log.WithError(err).Debug("refresh account after resubscribe")
		}
		return true
	}

	log.WithField("attempts", l.cfg.ResubscribeAttempts).Error("account subscription ended")
	return false
}
