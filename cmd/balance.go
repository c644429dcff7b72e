package cmd

import (
	"fmt"

	counteradapter "github.com/bnema/solana-counter/internal/adapters/render/counter"
	"github.com/bnema/solana-counter/internal/domain"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newBalanceCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Print the SOL balance of an address or of the selected wallet account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key solana.PublicKey
			if len(args) == 1 {
				parsed, err := solana.PublicKeyFromBase58(args[0])
				if err != nil {
					return fmt.Errorf("%w: %q: %v", domain.ErrInvalidAddress, args[0], err)
				}
				key = parsed
			} else {
				account, ok := app.sessions.SelectedAccount()
				if !ok {
					return fmt.Errorf("%w: run `counter auth authorize` or pass an address", domain.ErrNotAuthorized)
				}
				key = account.PublicKey
			}

			lamports, err := app.ledger.Balance(cmd.Context(), key)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, counteradapter.FormatSOL(lamports))
			return err
		},
	}
}
