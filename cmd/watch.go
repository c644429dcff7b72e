package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	counteradapter "github.com/bnema/solana-counter/internal/adapters/render/counter"
	"github.com/bnema/solana-counter/internal/application"
	"github.com/bnema/solana-counter/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the counter live and change it with + and -",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.close()

			program, ok := app.programs.Resolved()
			if !ok {
				return domain.ErrProgramNotReady
			}

			snapshot := counteradapter.Snapshot{Cluster: app.cfg.Cluster, Program: program.ProgramContext}
			fillWallet(cmd, app, &snapshot)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var (
				p       *tea.Program
				control *application.CounterControl
			)
			submit := func(method domain.CounterMethod) error {
				_, err := control.Submit(ctx, method)
				if account, ok := app.sessions.SelectedAccount(); ok {
					if balance, balanceErr := app.ledger.Balance(ctx, account.PublicKey); balanceErr == nil {
						p.Send(counteradapter.BalanceMsg{Lamports: balance})
					}
				}
				return err
			}

			p = tea.NewProgram(
				counteradapter.NewWatchModel(snapshot, submit),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			control = app.newControl(counteradapter.NewProgramNotifier(p))

			var wg sync.WaitGroup
			watchErr := make(chan error, 1)
			wg.Add(1)
			go func() {
				defer wg.Done()
				watchErr <- followCounter(ctx, app.view, p)
			}()

			_, runErr := p.Run()
			cancel()
			wg.Wait()

			if err := <-watchErr; err != nil {
				return fmt.Errorf("watch counter: %w", err)
			}
			if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
				return runErr
			}
			return nil
		},
	}
}

type counterWatcher interface {
	Watch(ctx context.Context, onUpdate func(domain.CounterAccount)) error
}

// followCounter streams counter updates into the program and makes it quit
// when the subscription cannot start.
func followCounter(ctx context.Context, view counterWatcher, p counteradapter.Sender) error {
	err := view.Watch(ctx, func(counter domain.CounterAccount) {
		p.Send(counteradapter.CounterMsg{Counter: counter})
	})
	if err != nil && ctx.Err() == nil {
		p.Send(counteradapter.WatchFailedMsg{Err: err})
	}
	return err
}
