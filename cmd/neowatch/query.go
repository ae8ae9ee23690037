package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"neo-overwatch/api/services"
	"neo-overwatch/pkg/shared"
	"neo-overwatch/pkg/write"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List close approaches matching the given filters",
	Example: `  neowatch query --date 2020-01-01
  neowatch query --start-date 2020-01-01 --end-date 2020-12-31 --max-distance 0.1 --hazardous
  neowatch query --min-diameter 1 --limit 0 --outfile results.json`,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringP("date", "d", "", "only approaches on this date (YYYY-MM-DD)")
	f.StringP("start-date", "s", "", "only approaches on or after this date")
	f.StringP("end-date", "e", "", "only approaches on or before this date")
	f.String("min-distance", "", "minimum approach distance (au)")
	f.String("max-distance", "", "maximum approach distance (au)")
	f.String("min-velocity", "", "minimum relative velocity (km/s)")
	f.String("max-velocity", "", "maximum relative velocity (km/s)")
	f.String("min-diameter", "", "minimum NEO diameter (km)")
	f.String("max-diameter", "", "maximum NEO diameter (km)")
	f.Bool("hazardous", false, "only potentially hazardous NEOs")
	f.Bool("not-hazardous", false, "only NEOs that are not potentially hazardous")
	f.String("pdes", "", "only approaches of this designation")
	f.String("name", "", "only approaches of the NEO with this name")
	f.IntP("limit", "l", 10, "maximum number of results, 0 for all")
	f.StringP("outfile", "o", "", "write results to a .csv or .json file instead of stdout")
	queryCmd.MarkFlagsMutuallyExclusive("hazardous", "not-hazardous")
	queryCmd.MarkFlagsMutuallyExclusive("date", "start-date")
	queryCmd.MarkFlagsMutuallyExclusive("date", "end-date")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	str := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}

	req := shared.QueryRequest{}
	req.Filters.Date = str("date")
	req.Filters.StartDate = str("start-date")
	req.Filters.EndDate = str("end-date")
	req.Filters.DistanceMin = str("min-distance")
	req.Filters.DistanceMax = str("max-distance")
	req.Filters.VelocityMin = str("min-velocity")
	req.Filters.VelocityMax = str("max-velocity")
	req.Filters.DiameterMin = str("min-diameter")
	req.Filters.DiameterMax = str("max-diameter")
	req.Filters.Designation = str("pdes")
	req.Filters.Name = str("name")
	if hazardous, _ := f.GetBool("hazardous"); hazardous {
		req.Filters.Hazardous = "true"
	}
	if notHazardous, _ := f.GetBool("not-hazardous"); notHazardous {
		req.Filters.Hazardous = "false"
	}
	req.Limit, _ = f.GetInt("limit")
	if req.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	database, err := loadDatabase(cmd.Context(), cfg, appLog)
	if err != nil {
		return err
	}

	results, err := services.NewApproachService(database, nil, appLog).Query(&req, shared.SourceCLI)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outfile := str("outfile"); outfile != "" {
		n, err := write.WriteFile(outfile, slices.Values(results))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d close approaches to %s\n", n, outfile)
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No matching close approaches.")
		return nil
	}
	for _, ca := range results {
		fmt.Fprintln(out, ca)
	}
	return nil
}
