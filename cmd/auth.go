package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/solana-counter/internal/domain"
	"github.com/bnema/solana-counter/internal/ports"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the wallet authorization",
	}

	cmd.AddCommand(
		newAuthAuthorizeCmd(app),
		newAuthDeauthorizeCmd(app),
		newAuthAccountsCmd(app),
		newAuthSelectCmd(app),
	)

	return cmd
}

func newAuthAuthorizeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Authorize this app with the wallet, or refresh the stored authorization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var selected domain.Account
			err := app.wallets.Transact(cmd.Context(), func(ctx context.Context, wallet ports.Wallet) error {
				account, err := app.sessions.AuthorizeSession(ctx, wallet)
				selected = account
				return err
			})
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "authorized %s on %s\n", selected.DisplayName(), app.cfg.Cluster); err != nil {
				return err
			}
			return writeAccounts(cmd.OutOrStdout(), app.sessions.Accounts(), selected)
		},
	}
}

func newAuthDeauthorizeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deauthorize",
		Short: "Revoke the stored authorization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := app.sessions.Authorization(); !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "not authorized")
				return err
			}

			err := app.wallets.Transact(cmd.Context(), func(ctx context.Context, wallet ports.Wallet) error {
				return app.sessions.DeauthorizeSession(ctx, wallet)
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "deauthorized")
			return err
		},
	}
}

func newAuthAccountsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the authorized accounts; * marks the selected one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, ok := app.sessions.SelectedAccount()
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "not authorized")
				return err
			}
			return writeAccounts(cmd.OutOrStdout(), app.sessions.Accounts(), selected)
		},
	}
}

func newAuthSelectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <address>",
		Short: "Select the authorized account used to sign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := resolveAccount(app.sessions.Accounts(), args[0])
			if err != nil {
				return err
			}

			if err := app.sessions.ChangeAccount(cmd.Context(), account); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "selected %s\n", account.DisplayName())
			return err
		},
	}
}

// resolveAccount accepts a base58 public key or the wallet's base64 address.
// Unknown addresses are still returned so the session manager can reject them.
func resolveAccount(accounts []domain.Account, raw string) (domain.Account, error) {
	for _, account := range accounts {
		if account.PublicKey.String() == raw || string(account.Address) == raw {
			return account, nil
		}
	}

	if key, err := solana.PublicKeyFromBase58(raw); err == nil {
		return domain.AccountFromPublicKey(key, ""), nil
	}
	return domain.NewAccount(domain.Base64Address(raw), "")
}

func writeAccounts(out io.Writer, accounts []domain.Account, selected domain.Account) error {
	for _, account := range accounts {
		marker := " "
		if account.Address == selected.Address {
			marker = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %s\n", marker, account.DisplayName()); err != nil {
			return err
		}
	}
	return nil
}
