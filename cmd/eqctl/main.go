package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/client"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/config"
	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.SetupLogging(config.LogLevel(), "console"); err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("eqctl failed")
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var apiURL string
	root := &cobra.Command{
		Use:           "eqctl",
		Short:         "Upload equipment datasets and fetch summaries and reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", config.APIURL(), "equipment API base URL")
	root.SetOut(out)

	api := func() *client.Client { return client.New(apiURL) }

	root.AddCommand(
		uploadCmd(api),
		summaryCmd(api),
		historyCmd(api),
		reportCmd(api),
		deleteCmd(api),
	)
	return root
}

func uploadCmd(api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.csv|file.xlsx>",
		Short: "Upload a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := api().UploadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s as dataset %d\n", args[0], id)
			return nil
		},
	}
}

func summaryCmd(api func() *client.Client) *cobra.Command {
	var id int64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the latest dataset summary, or one dataset with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var s domain.Summary
			var err error
			if id > 0 {
				s, err = api().DatasetSummary(cmd.Context(), id)
			} else {
				s, err = api().Summary(cmd.Context())
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return printSummary(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "dataset id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func historyCmd(api func() *client.Client) *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := api().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILENAME\tUPLOADED\tROWS\tAVG FLOW\tAVG PRESSURE\tAVG TEMP")
			for _, s := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\n",
					s.DatasetID, s.Filename, s.UploadedAt.UTC().Format("2006-01-02 15:04"),
					s.RecordCount(), s.AvgFlowrate, s.AvgPressure, s.AvgTemperature)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of datasets (server default when 0)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func reportCmd(api func() *client.Client) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "report <dataset-id>",
		Short: "Download the PDF report for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			path, err := api().DownloadReport(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "out", ".", "directory to save the report in")
	return cmd
}

func deleteCmd(api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <dataset-id>",
		Short: "Delete a dataset and its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := api().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted dataset %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid dataset id %q", s)
	}
	return id, nil
}

func printSummary(w io.Writer, s domain.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Dataset\t%d (%s)\n", s.DatasetID, s.Filename)
	fmt.Fprintf(tw, "Uploaded\t%s\n", s.UploadedAt.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Total Equipment\t%d\n", s.RecordCount())
	fmt.Fprintf(tw, "Avg Flowrate\t%.2f\n", s.AvgFlowrate)
	fmt.Fprintf(tw, "Avg Pressure\t%.2f\n", s.AvgPressure)
	fmt.Fprintf(tw, "Avg Temperature\t%.2f\n", s.AvgTemperature)

	types := s.TypeDistribution.Sorted()
	sort.SliceStable(types, func(i, j int) bool { return types[i].Count > types[j].Count })
	for _, c := range types {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Category, c.Count)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
