package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/veloops/stationd/app"
	"github.com/veloops/stationd/config"
	"github.com/veloops/stationd/core/rebalance"
	"github.com/veloops/stationd/infra/logger"
	"github.com/veloops/stationd/pkg/export"
)

var adviseOutput string

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Run one advisory pass over the latest snapshot",
	RunE:  advise,
}

func init() {
	adviseCmd.Flags().StringVarP(&adviseOutput, "output", "o", "table", "output format: table, json or csv")
	rootCmd.AddCommand(adviseCmd)
}

func advise(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("advise").Errorf("service close: %v", err)
		}
	}()

	report, err := svc.RunAdvisory(ctx)
	if err != nil {
		return err
	}

	switch strings.ToLower(adviseOutput) {
	case "json":
		return export.WriteJSON(os.Stdout, report)
	case "csv":
		if err := export.WriteCSV(os.Stdout, report.Supply); err != nil {
			return err
		}
		return export.WriteCSV(os.Stdout, report.Removal)
	default:
		return printReport(report)
	}
}

func printReport(report rebalance.Report) error {
	fmt.Printf("advisory run %s: %d stations scanned, %d skipped, horizon %d min\n",
		report.RunID, report.StationsScanned, report.StationsSkipped, report.HorizonMinutes)

	if err := printList("Stations needing bikes", report.Supply, func(r rebalance.Recommendation) int {
		return r.NeedAdd
	}); err != nil {
		return err
	}
	return printList("Stations needing removal", report.Removal, func(r rebalance.Recommendation) int {
		return r.NeedRemove
	})
}

func printList(title string, recs []rebalance.Recommendation, need func(rebalance.Recommendation) int) error {
	fmt.Printf("\n%s (%d)\n", title, len(recs))
	if len(recs) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Station", "Name", "Area", "Now", "Predicted", "Capacity", "Need", "Priority"})

	var data [][]string
	for _, r := range recs {
		data = append(data, []string{
			r.StationID,
			r.Name,
			r.Area,
			strconv.Itoa(r.CurrentPickup),
			strconv.Itoa(r.PredictedPickup),
			strconv.Itoa(r.Capacity),
			strconv.Itoa(need(r)),
			fmt.Sprintf("%.3f", r.Priority),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
