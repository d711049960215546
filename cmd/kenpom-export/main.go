package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cbbstats/kenpom-scraper/internal/export"
	"github.com/cbbstats/kenpom-scraper/internal/kenpom"
	"github.com/cbbstats/kenpom-scraper/internal/store"
)

var (
	flagSeason   int
	flagTeams    []string
	flagLimit    int
	flagOut      string
	flagDelayMin time.Duration
	flagDelayMax time.Duration
	flagDDBTable string
)

func main() {
	cmd := &cobra.Command{
		Use:   "kenpom-export [MM-DD-YYYY]",
		Short: "Export denormalized per-player stat rows for every team",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	cmd.Flags().IntVar(&flagSeason, "season", 0, "season ending year (default: current)")
	cmd.Flags().StringSliceVar(&flagTeams, "teams", nil, "restrict to these team names")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "process at most N teams")
	cmd.Flags().StringVar(&flagOut, "out", "", "workbook path (default: <date>.xlsx)")
	cmd.Flags().DurationVar(&flagDelayMin, "delay-min", 2*time.Second, "minimum delay between team fetches")
	cmd.Flags().DurationVar(&flagDelayMax, "delay-max", 5*time.Second, "maximum delay between team fetches")
	cmd.Flags().StringVar(&flagDDBTable, "ddb-table", "", "also write player rows to this DynamoDB table")

	if err := cmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func mustenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		logrus.Fatalf("missing env %s", k)
	}
	return v
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	now := time.Now()
	if len(args) == 1 {
		d, err := time.Parse("01-02-2006", args[0])
		if err != nil {
			return fmt.Errorf("bad date %q (want MM-DD-YYYY): %w", args[0], err)
		}
		now = d
	}
	out := flagOut
	if out == "" {
		out = now.Format("Mon Jan 02") + ".xlsx"
	}

	client, err := kenpom.Login(ctx, mustenv("KENPOM_EMAIL"), mustenv("KENPOM_PASSWORD"))
	if err != nil {
		return err
	}

	sc, err := kenpom.ResolveSeason(ctx, client, flagSeason)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"season": sc.Season, "teams": len(sc.Teams)}).Info("season resolved")

	ff, err := kenpom.GetFourFactors(ctx, client, sc)
	if err != nil {
		return err
	}
	ts, err := kenpom.GetTeamStats(ctx, client, sc, false)
	if err != nil {
		return err
	}
	tsd, err := kenpom.GetTeamStats(ctx, client, sc, true)
	if err != nil {
		return err
	}
	pd, err := kenpom.GetPointDist(ctx, client, sc)
	if err != nil {
		return err
	}
	agg := &kenpom.TeamAggregates{FourFactors: ff, TeamStats: ts, TeamStatsD: tsd, PointsDist: pd}

	teams := sc.Teams
	if len(flagTeams) > 0 {
		teams = flagTeams
	}
	if flagLimit > 0 && flagLimit < len(teams) {
		teams = teams[:flagLimit]
	}

	results, err := kenpom.PlayersExpandedBatch(ctx, client, sc, teams, agg, kenpom.BatchOptions{
		DelayMin: flagDelayMin,
		DelayMax: flagDelayMax,
		Now:      now,
	})
	if err != nil {
		return err
	}

	var ok, skipped int
	for _, r := range results {
		if r.Err != nil {
			skipped++
		} else {
			ok++
		}
	}
	logrus.WithFields(logrus.Fields{"ok": ok, "skipped": skipped}).Info("batch finished")

	if err := export.WriteWorkbook(out, ff, ts, pd, results); err != nil {
		return err
	}
	logrus.WithField("path", out).Info("workbook written")

	if flagDDBTable != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return err
		}
		if err := store.PutPlayerRows(ctx, ddb.NewFromConfig(cfg), flagDDBTable, sc.Season, results); err != nil {
			return err
		}
		logrus.WithField("table", flagDDBTable).Info("player rows stored")
	}
	return nil
}
