package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	app "github.com/okian/medalboard/internal/app"
	"github.com/okian/medalboard/internal/config"
	"github.com/okian/medalboard/internal/domain/model"
	"github.com/okian/medalboard/pkg/logger"
)

type rootOptions struct {
	configPath string
	baseURL    string
	lang       string
	output     string
	verbose    bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "medalctl",
		Short:         "Query live Olympic medal standings, medallists and schedules",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	pf.StringVar(&opts.baseURL, "base-url", "", "feed origin")
	pf.StringVar(&opts.lang, "lang", "", "feed language code")
	pf.StringVarP(&opts.output, "output", "o", "table", "output format: table or json")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newMedalsCmd(opts),
		newMedallistsCmd(opts),
		newScheduleCmd(opts),
		newRefreshCmd(opts),
		newVersionCmd(),
	)
	return root
}

// newService loads config and applies flag overrides.
func newService(ctx context.Context, opts *rootOptions) (*app.Service, error) {
	if opts.configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, opts.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.lang != "" {
		cfg.Lang = opts.lang
	}

	log := logger.Nop()
	if opts.verbose {
		if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
			return nil, err
		}
		_ = logger.SetLevelString("debug")
		log = logger.Get()
	}
	return app.FromConfig(cfg, log, app.WithInitialRefresh(false))
}

func checkOutput(opts *rootOptions) error {
	switch opts.output {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMedalsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "medals",
		Short: "Show the medal table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(opts); err != nil {
				return err
			}
			svc, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			feed, err := svc.Medals(cmd.Context(), true)
			if err != nil {
				return err
			}
			rows := feed.Normalize()
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tNOC\tCOUNTRY\tGOLD\tSILVER\tBRONZE\tTOTAL")
			for _, r := range rows {
				total := fmt.Sprint(r.Total)
				if !r.Consistent {
					total += "*"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
					r.Rank, r.OrganisationCode, r.OrganisationName, r.Gold, r.Silver, r.Bronze, total)
			}
			return tw.Flush()
		},
	}
}

func newMedallistsCmd(opts *rootOptions) *cobra.Command {
	var discipline, country, medal string
	cmd := &cobra.Command{
		Use:   "medallists",
		Short: "List medal winners, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(opts); err != nil {
				return err
			}
			filter := model.RecordFilter{Discipline: discipline, Country: country}
			if medal != "" {
				filter.MedalType = model.ParseMedalType(medal)
				if filter.MedalType == model.Unknown {
					return fmt.Errorf("unknown medal %q", medal)
				}
			}

			svc, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			feed, err := svc.Medallists(cmd.Context(), true)
			if err != nil {
				return err
			}
			records := model.FilterRecords(feed.Records(), filter)
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), records)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MEDAL\tATHLETE\tNOC\tDISCIPLINE\tEVENT")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.MedalType, r.AthleteName, r.OrganisationCode, r.DisciplineName, r.EventName)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&discipline, "discipline", "", "exact discipline name")
	f.StringVar(&country, "country", "", "country name or NOC code")
	f.StringVar(&medal, "medal", "", "GOLD, SILVER or BRONZE")
	return cmd
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [YYYY-MM-DD]",
		Short: "Show one day of competition with podiums (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(opts); err != nil {
				return err
			}
			svc, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			date := svc.Today()
			if len(args) == 1 {
				date = args[0]
			}
			board, err := svc.Board(cmd.Context(), date, true)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), board)
			}
			return printBoard(cmd.OutOrStdout(), svc, board)
		},
	}
}

func printBoard(w io.Writer, svc *app.Service, b app.Board) error {
	fmt.Fprintf(w, "%s (%s)\n", b.Date, b.Period)
	if b.MedallistsError != "" {
		fmt.Fprintf(w, "podiums unavailable: %s\n", b.MedallistsError)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	section := func(title string, units []app.BoardUnit) {
		if len(units) == 0 {
			return
		}
		fmt.Fprintf(tw, "\n%s\n", title)
		for _, u := range units {
			start := "--:--"
			if u.StartDate != nil {
				start = u.StartDate.In(svc.Location()).Format("15:04")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", start, u.Status, u.DisciplineName, u.Title(), podiumLine(u))
		}
	}
	section("UPCOMING", b.NotFinished)
	section("FINISHED", b.Finished)
	section("OTHER", b.Other)
	return tw.Flush()
}

func podiumLine(u app.BoardUnit) string {
	parts := make([]string, 0, len(u.Podium))
	for _, p := range u.Podium {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", p.MedalType, p.AthleteName, p.OrganisationCode))
	}
	return strings.Join(parts, ", ")
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the medal table and medallists once and report each feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := svc.RefreshAll(cmd.Context())
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "run %s in %s\n", out.RunID, out.Took)
			fmt.Fprintf(w, "medals: %s\n", status(out.Medals.Err))
			fmt.Fprintf(w, "medallists: %s\n", status(out.Medallists.Err))
			if out.LastUpdate != nil {
				fmt.Fprintf(w, "last update: %s\n", *out.LastUpdate)
			}
			if !out.Success() {
				return fmt.Errorf("refresh incomplete")
			}
			return nil
		},
	}
}

func status(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "medalctl %s\n", Version)
		},
	}
}
