package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/service/reporting"
)

// Reporter is the reporting surface the commands need.
type Reporter interface {
	Run(ctx context.Context, opts reporting.RunOptions) (models.StockRun, error)
	Consumption(ctx context.Context, category string, days int) (string, error)
}

// OpenFunc connects a Reporter. The returned function releases it.
type OpenFunc func(ctx context.Context) (Reporter, func(), error)

// ExitError asks main to exit with Code without printing anything further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type rootOptions struct {
	open       OpenFunc
	jsonOutput bool
	category   string
}

// NewRootCmd builds the stockmonitor command tree.
func NewRootCmd(open OpenFunc) *cobra.Command {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:   "stockmonitor",
		Short: "Inventory reorder checks for the print shop",
		Long: `stockmonitor evaluates inventory against reorder thresholds.

The inventory source and credentials come from the same environment
variables as the server (INVENTORY_SOURCE, GOOGLE_SHEETS_*, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output JSON instead of human-readable text")
	root.PersistentFlags().StringVar(&opts.category, "category", "", "Filter by category: filament, resin, parts")

	root.AddCommand(newCheckCmd(opts), newThresholdsCmd(opts), newConsumptionCmd(opts))
	return root
}

func (o *rootOptions) withReporter(ctx context.Context, fn func(Reporter) error) error {
	reporter, release, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(reporter)
}
