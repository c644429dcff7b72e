package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/sirupsen/logrus"
)

// CounterView keeps the last decoded counter value in sync with the chain.
type CounterView struct {
	programs *ProgramSupplier
	ledger   ports.Ledger
	log      logrus.FieldLogger

	mu      sync.RWMutex
	counter *domain.CounterAccount
}

func NewCounterView(programs *ProgramSupplier, ledger ports.Ledger, log logrus.FieldLogger) *CounterView {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &CounterView{programs: programs, ledger: ledger, log: log}
}

// Activation is a live counter subscription.
type Activation struct {
	once    sync.Once
	closeFn func() error
	err     error
}

// Close removes the change listener. It is safe to call more than once.
func (a *Activation) Close() error {
	a.once.Do(func() {
		a.err = a.closeFn()
	})
	return a.err
}

// Activate fetches the counter once and subscribes to its changes. A failed
// initial fetch is logged and the view stays loading until the first change.
// onUpdate may be nil.
func (v *CounterView) Activate(ctx context.Context, onUpdate func(domain.CounterAccount)) (*Activation, error) {
	program, ok := v.programs.Resolved()
	if !ok {
		return nil, domain.ErrProgramNotReady
	}

	log := v.log.WithField("counter", program.CounterAddress.String())

	counter, err := program.Program.FetchCounter(ctx, program.CounterAddress)
	if err != nil {
		log.WithError(err).Warn("fetch counter account")
	} else {
		v.set(counter, onUpdate)
	}

	id, err := v.ledger.OnAccountChange(ctx, program.CounterAddress, func(data []byte) {
		decoded, err := program.Program.DecodeCounter(data)
		if err != nil {
			log.WithError(err).Error("account decoding error")
			return
		}
		v.set(decoded, onUpdate)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to counter account: %w", err)
	}

	return &Activation{closeFn: func() error {
		if err := v.ledger.RemoveAccountChangeListener(id); err != nil {
			return fmt.Errorf("remove counter listener: %w", err)
		}
		return nil
	}}, nil
}

// Watch keeps the view active until ctx is done.
func (v *CounterView) Watch(ctx context.Context, onUpdate func(domain.CounterAccount)) error {
	activation, err := v.Activate(ctx, onUpdate)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return activation.Close()
}

// Current returns the last known counter, or false while loading.
func (v *CounterView) Current() (domain.CounterAccount, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.counter == nil {
		return domain.CounterAccount{}, false
	}
	return *v.counter, true
}

func (v *CounterView) set(counter domain.CounterAccount, onUpdate func(domain.CounterAccount)) {
	v.mu.Lock()
	v.counter = &counter
	v.mu.Unlock()

	if onUpdate != nil {
		onUpdate(counter)
	}
}
