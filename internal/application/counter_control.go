package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var errNoSignature = errors.New("wallet returned no signature")

type ControlConfig struct {
	// Airdrop enables topping up the fee payer when it is under MinFeeBalance.
	Airdrop bool
}

// CounterControl submits increment and decrement transactions through the
// wallet, allowing at most one submission in flight.
type CounterControl struct {
	cfg      ControlConfig
	sessions *SessionService
	programs *ProgramSupplier
	ledger   ports.Ledger
	wallets  ports.WalletConnector
	notifier ports.Notifier
	log      logrus.FieldLogger

	inFlight *semaphore.Weighted
}

func NewCounterControl(
	cfg ControlConfig,
	sessions *SessionService,
	programs *ProgramSupplier,
	ledger ports.Ledger,
	wallets ports.WalletConnector,
	notifier ports.Notifier,
	log logrus.FieldLogger,
) *CounterControl {
	if notifier == nil {
		notifier = ports.NotifierFunc(func(ports.Notification) {})
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &CounterControl{
		cfg:      cfg,
		sessions: sessions,
		programs: programs,
		ledger:   ledger,
		wallets:  wallets,
		notifier: notifier,
		log:      log,
		inFlight: semaphore.NewWeighted(1),
	}
}

func (c *CounterControl) Increment(ctx context.Context) (solana.Signature, error) {
	return c.Submit(ctx, domain.MethodIncrement)
}

func (c *CounterControl) Decrement(ctx context.Context) (solana.Signature, error) {
	return c.Submit(ctx, domain.MethodDecrement)
}

// InProgress reports whether a submission currently holds the slot.
func (c *CounterControl) InProgress() bool {
	if !c.inFlight.TryAcquire(1) {
		return true
	}
	c.inFlight.Release(1)
	return false
}

// Submit runs one counter transaction. It returns ErrProgramNotReady or
// ErrSubmissionInProgress without notifying when nothing was attempted; every
// other outcome is reported through the notifier as well.
func (c *CounterControl) Submit(ctx context.Context, method domain.CounterMethod) (solana.Signature, error) {
	if !method.Valid() {
		return solana.Signature{}, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}

	program, ok := c.programs.Resolved()
	if !ok {
		return solana.Signature{}, domain.ErrProgramNotReady
	}

	if !c.inFlight.TryAcquire(1) {
		return solana.Signature{}, domain.ErrSubmissionInProgress
	}
	defer c.inFlight.Release(1)

	log := c.log.WithField("method", string(method))

	signature, err := c.submit(ctx, program, method, log)
	if err != nil {
		log.WithError(err).Error("counter transaction failed")
		c.notifier.Notify(ports.Notification{
			Level:   ports.NotificationError,
			Message: fmt.Sprintf("Error: %v", err),
		})
		return solana.Signature{}, err
	}

	log.WithField("signature", signature.String()).Info("counter transaction sent")
	c.notifier.Notify(ports.Notification{
		Level:   ports.NotificationSuccess,
		Message: fmt.Sprintf("Transaction successful! %s", signature),
	})

	return signature, nil
}

func (c *CounterControl) submit(ctx context.Context, program ResolvedProgram, method domain.CounterMethod, log logrus.FieldLogger) (solana.Signature, error) {
	var signature solana.Signature

	err := c.wallets.Transact(ctx, func(ctx context.Context, wallet ports.Wallet) error {
		account, err := c.sessions.AuthorizeSession(ctx, wallet)
		if err != nil {
			return err
		}

		block, err := c.ledger.LatestBlockhash(ctx)
		if err != nil {
			return fmt.Errorf("get latest blockhash: %w", err)
		}

		instruction, err := program.Program.Instruction(method, domain.CounterAccounts{
			Counter: program.CounterAddress,
			User:    account.PublicKey,
		})
		if err != nil {
			return fmt.Errorf("build %s instruction: %w", method, err)
		}

		if err := c.ensureFeeBalance(ctx, account.PublicKey, log); err != nil {
			return err
		}

		tx, err := solana.NewTransaction(
			[]solana.Instruction{instruction},
			block.Blockhash,
			solana.TransactionPayer(account.PublicKey),
		)
		if err != nil {
			return fmt.Errorf("assemble transaction: %w", err)
		}

		signatures, err := wallet.SignAndSendTransactions(ctx, []*solana.Transaction{tx})
		if err != nil {
			return fmt.Errorf("sign and send transaction: %w", err)
		}
		if len(signatures) == 0 {
			return errNoSignature
		}

		signature = signatures[0]
		return nil
	})
	if err != nil {
		return solana.Signature{}, err
	}

	return signature, nil
}

func (c *CounterControl) ensureFeeBalance(ctx context.Context, payer solana.PublicKey, log logrus.FieldLogger) error {
	balance, err := c.ledger.Balance(ctx, payer)
	if err != nil {
		return fmt.Errorf("get fee payer balance: %w", err)
	}

	log = log.WithFields(logrus.Fields{"payer": payer.String(), "lamports": balance})
	log.Info("fee payer balance")

	if balance >= domain.MinFeeBalance {
		return nil
	}
	if !c.cfg.Airdrop {
		log.Warn("fee payer balance is low and airdrops are disabled")
		return nil
	}

	log.WithField("airdrop", domain.AirdropAmount).Info("requesting airdrop")
	if _, err := c.ledger.RequestAirdrop(ctx, payer, domain.AirdropAmount); err != nil {
		return fmt.Errorf("%w for %s: %w", domain.ErrAirdropFailed, payer, err)
	}

	return nil
}
