package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mhornak/faceclock/internal/config"
	"github.com/mhornak/faceclock/internal/ledger"
	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query attendance records",
}

var recordsDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "List attendance records for one calendar day",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsDay,
}

var recordsMonthCmd = &cobra.Command{
	Use:   "month [identity] [year] [month]",
	Short: "List one person's records for a month",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordsMonth,
}

var recordsSummaryCmd = &cobra.Command{
	Use:   "summary [identity] [year] [month]",
	Short: "Print one person's monthly attendance summary",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecordsSummary,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsDayCmd)
	recordsCmd.AddCommand(recordsMonthCmd)
	recordsCmd.AddCommand(recordsSummaryCmd)
}

// openRecordsLedger wires the ledger for the records subcommands.
func openRecordsLedger(cmd *cobra.Command) (*ledger.Ledger, func() error, error) {
	cfg := config.Load()

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}

	led, err := openLedger(store, cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return led, closeStore, nil
}

func parseMonthArgs(args []string) (string, int, time.Month, error) {
	identity := args[0]
	year, err := strconv.Atoi(args[1])
	if err != nil || year < 1 {
		return "", 0, 0, fmt.Errorf("invalid year %q", args[1])
	}
	month, err := strconv.Atoi(args[2])
	if err != nil || month < 1 || month > 12 {
		return "", 0, 0, fmt.Errorf("invalid month %q", args[2])
	}
	return identity, year, time.Month(month), nil
}

func printRecords(led *ledger.Ledger, recs []ledger.Record) {
	for _, rec := range recs {
		out := "-"
		if rec.PunchOut != nil {
			out = rec.PunchOut.In(led.Location()).Format("15:04:05")
		}
		fmt.Printf("%s  %-24s  in %s  out %s\n",
			rec.Day, rec.Identity,
			rec.PunchIn.In(led.Location()).Format("15:04:05"), out)
	}
}

func runRecordsDay(cmd *cobra.Command, args []string) error {
	led, closeStore, err := openRecordsLedger(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	t, err := time.ParseInLocation(ledger.DayFormat, args[0], led.Location())
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
	}

	recs, err := led.RecordsForDay(cmd.Context(), t)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("No records for %s\n", args[0])
		return nil
	}
	printRecords(led, recs)
	return nil
}

func runRecordsMonth(cmd *cobra.Command, args []string) error {
	identity, year, month, err := parseMonthArgs(args)
	if err != nil {
		return err
	}

	led, closeStore, err := openRecordsLedger(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	recs, err := led.RecordsForIdentity(cmd.Context(), identity, year, month)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("No records for %s in %d-%02d\n", identity, year, month)
		return nil
	}
	printRecords(led, recs)
	return nil
}

func runRecordsSummary(cmd *cobra.Command, args []string) error {
	identity, year, month, err := parseMonthArgs(args)
	if err != nil {
		return err
	}

	led, closeStore, err := openRecordsLedger(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	sum, err := led.MonthlySummary(cmd.Context(), identity, year, month)
	if err != nil {
		return err
	}

	fmt.Printf("%s, %d-%02d\n", sum.Identity, year, month)
	fmt.Printf("  Days present:    %d\n", sum.DaysPresent)
	fmt.Printf("  Complete days:   %d\n", sum.CompleteDays)
	fmt.Printf("  Incomplete days: %d\n", sum.IncompleteDays)
	fmt.Printf("  Total worked:    %s\n", sum.TotalWorked)
	return nil
}
