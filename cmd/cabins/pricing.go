package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cabinrent/internal/app/dto"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
	"cabinrent/internal/infra/config"
)

// quoteCmd prices a stay offline from the configured holiday table and tariffs.
func quoteCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "quote FROM TO",
		Short: "Price an inclusive date range (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			dr, err := daterange.Parse(args[0], args[1])
			if err != nil {
				return err
			}
			if err := dr.CheckNights(cfg.MaxWindowNights); err != nil {
				return err
			}
			quote, err := engine.Quote(dr)
			if err != nil {
				return err
			}
			out := dto.MapPriceQuote(quote)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return writeQuote(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func dayCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "day DATE",
		Short: "Show the tariff band and holiday status of one date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			d, err := civil.Parse(args[0])
			if err != nil {
				return err
			}
			info := dto.MapDayInfo(engine.Day(d))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			holiday := "-"
			if info.IsHoliday {
				holiday = info.HolidayName
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %d %s\n", info.Date, info.WeekdayName, info.Kind, info.Rate, holiday)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func writeQuote(w io.Writer, q dto.PriceQuote) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tKIND\tRATE\tHOLIDAY")
	for _, d := range q.Days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.Date, d.WeekdayName, d.Kind, d.Rate, d.HolidayName)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\t\n", q.Total)
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
