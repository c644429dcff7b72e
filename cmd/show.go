package cmd

import (
	"encoding/json"
	"fmt"

	counteradapter "github.com/bnema/solana-counter/internal/adapters/render/counter"
	"github.com/bnema/solana-counter/internal/domain"
	"github.com/spf13/cobra"
)

type showOutput struct {
	Cluster         domain.Cluster `json:"cluster"`
	ProgramID       string         `json:"program_id"`
	CounterAddress  string         `json:"counter_address"`
	Bump            uint8          `json:"bump"`
	Count           string         `json:"count"`
	Account         string         `json:"account,omitempty"`
	BalanceLamports *uint64        `json:"balance_lamports,omitempty"`
}

func newShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current counter value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := loadSnapshot(cmd, app)
			if err != nil {
				return err
			}

			if asJSON {
				out := showOutput{
					Cluster:         snapshot.Cluster,
					ProgramID:       snapshot.Program.ProgramID.String(),
					CounterAddress:  snapshot.Program.CounterAddress.String(),
					Bump:            snapshot.Program.Bump,
					Count:           snapshot.Counter.String(),
					BalanceLamports: snapshot.Balance,
				}
				if snapshot.Account != nil {
					out.Account = snapshot.Account.PublicKey.String()
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			rendered, err := app.renderer(snapshot)
			if err != nil {
				return fmt.Errorf("render counter: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

// loadSnapshot fetches the counter once. The selected account and its balance
// are included when a wallet is authorized; a balance lookup failure only
// drops the balance.
func loadSnapshot(cmd *cobra.Command, app *app) (counteradapter.Snapshot, error) {
	program, ok := app.programs.Resolved()
	if !ok {
		return counteradapter.Snapshot{}, domain.ErrProgramNotReady
	}

	counter, err := program.Program.FetchCounter(cmd.Context(), program.CounterAddress)
	if err != nil {
		return counteradapter.Snapshot{}, fmt.Errorf("fetch counter account: %w", err)
	}

	snapshot := counteradapter.Snapshot{
		Cluster: app.cfg.Cluster,
		Program: program.ProgramContext,
		Counter: &counter,
	}
	fillWallet(cmd, app, &snapshot)

	return snapshot, nil
}

func fillWallet(cmd *cobra.Command, app *app, snapshot *counteradapter.Snapshot) {
	account, ok := app.sessions.SelectedAccount()
	if !ok {
		return
	}
	snapshot.Account = &account

	balance, err := app.ledger.Balance(cmd.Context(), account.PublicKey)
	if err != nil {
		app.log.WithError(err).Warn("fetch fee balance")
		return
	}
	snapshot.Balance = &balance
}
