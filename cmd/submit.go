package cmd

import (
	"context"

	counteradapter "github.com/bnema/solana-counter/internal/adapters/render/counter"
	"github.com/bnema/solana-counter/internal/domain"
	"github.com/spf13/cobra"
)

func newSubmitCmd(app *app, use string, short string) *cobra.Command {
	method := domain.CounterMethod(use)

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.close()

			control := app.newControl(counteradapter.NewWriterNotifier(cmd.OutOrStdout()))
			err := runSubmitSpinner(cmd.Context(), cmd.ErrOrStderr(), "Sending transaction...", func(ctx context.Context) error {
				_, err := control.Submit(ctx, method)
				return err
			})
			if err != nil {
				// The notifier already printed the failure.
				cmd.SilenceErrors = true
			}
			return err
		},
	}
}
