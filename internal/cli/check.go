package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/service/reorder"
	"github.com/mamadbah2/stockmonitor/internal/service/reporting"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var criticalOnly, failOnCritical bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check all inventory levels",
		Long: `Evaluate every item and print the stock report.

Exit codes:
  0 - Report printed
  1 - --fail-on-critical set and an item is critical or out of stock
  2 - Error (configuration, inventory source)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withReporter(cmd.Context(), func(r Reporter) error {
				run, err := r.Run(cmd.Context(), reporting.RunOptions{Category: root.category})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if root.jsonOutput {
					if criticalOnly {
						run.Alerts = reorder.FilterBySeverity(run.Alerts, models.SeverityCritical)
					}
					data, err := reporting.ExportJSON(run)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(data))
				} else {
					fmt.Fprintln(out, reporting.FormatAlerts(run, reporting.FormatOptions{CriticalOnly: criticalOnly}))
				}

				if failOnCritical && run.Counts[models.SeverityCritical.String()]+run.Counts[models.SeverityEmergency.String()] > 0 {
					return &ExitError{Code: 1}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&criticalOnly, "critical-only", false, "Show only critical and emergency items")
	cmd.Flags().BoolVar(&failOnCritical, "fail-on-critical", false, "Exit 1 when any item is critical or out of stock")
	return cmd
}

func newThresholdsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "thresholds",
		Short: "Show reorder thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withReporter(cmd.Context(), func(r Reporter) error {
				run, err := r.Run(cmd.Context(), reporting.RunOptions{Category: root.category})
				if err != nil {
					return err
				}

				if root.jsonOutput {
					data, err := reporting.ExportJSON(run.Alerts)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), reporting.ThresholdTable(run.Alerts))
				return nil
			})
		},
	}
}

func newConsumptionCmd(root *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "consumption",
		Short: "Show consumption projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			return root.withReporter(cmd.Context(), func(r Reporter) error {
				report, err := r.Consumption(cmd.Context(), root.category, days)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Days for consumption projection")
	return cmd
}
