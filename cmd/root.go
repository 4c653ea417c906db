// Package cmd implements the opdusage CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/opdusage/internal/cli"
	"github.com/theirongolddev/opdusage/internal/config"
	"github.com/theirongolddev/opdusage/internal/pipeline"
	"github.com/theirongolddev/opdusage/internal/source"
	"github.com/theirongolddev/opdusage/internal/tui/theme"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagData     string
	flagNoCache  bool
	flagQuiet    bool
	flagConfig   string
	flagLogLevel string

	flagRenewal []string
	flagYear    []string
	flagPlan    []string
	flagFamily  []string
	flagAgeBand []string
)

// cfg is the effective configuration after the config file, environment and flags.
var cfg config.Config

// skipConfigCheck marks commands that must run even with an invalid config file.
const skipConfigCheck = "skip-config-check"

var rootCmd = &cobra.Command{
	Use:   "opdusage",
	Short: "OPD benefit usage analytics",
	Long: "Analyze OPD insurance benefit usage: how much of their OPD limit each age group\n" +
		"has consumed, and how age groups spread across usage slabs.",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagData, "data", "d", "", "Input file (.csv, .xlsx) or s3://bucket/key (default from config)")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache, reparse the input")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	pf.StringArrayVar(&flagRenewal, "renewal", nil, "Renewal type to include (repeatable)")
	pf.StringArrayVar(&flagYear, "year", nil, "Policy start year to include (repeatable)")
	pf.StringArrayVar(&flagPlan, "plan", nil, "Plan type to include (repeatable)")
	pf.StringArrayVar(&flagFamily, "family", nil, "Family structure to include (repeatable)")
	pf.StringArrayVar(&flagAgeBand, "age-band", nil, "Age band to include (repeatable)")
}

// initRuntime loads the config and sets up logging before any command runs.
func initRuntime(cmd *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}

	var err error
	cfg, err = config.LoadFrom(path)
	if err != nil {
		if _, ok := cmd.Annotations[skipConfigCheck]; !ok {
			return err
		}
		cfg = config.DefaultConfig()
	}

	if flagData != "" {
		cfg.General.DataFile = flagData
	}
	if flagNoCache {
		cfg.General.UseCache = false
	}
	theme.SetActive(cfg.Appearance.Theme)

	return configureLogging(cfg.Log)
}

func configureLogging(lc config.LogConfig) error {
	level := lc.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	} else if flagQuiet {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	if lc.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func sourceOptions() source.Options {
	return source.Options{
		Delimiter: cfg.DelimiterRune(),
		Sheet:     cfg.General.Sheet,
	}
}

// loadSession is the shared data loading path used by all commands.
// It goes through the SQLite cache unless caching is disabled.
func loadSession(ctx context.Context) (*pipeline.Session, error) {
	start := time.Now()
	s, err := pipeline.OpenSession(ctx, cfg.General.DataFile, sourceOptions(), cfg.General.UseCache)
	if err != nil {
		return nil, err
	}

	st := s.Stats
	log.WithFields(log.Fields{
		"source":       s.Source,
		"session_id":   s.ID,
		"rows":         st.TotalRows,
		"records":      st.Records,
		"parse_errors": st.ParseErrors,
		"zero_limit":   st.DroppedZeroLimit,
		"from_cache":   st.FromCache,
		"elapsed":      time.Since(start).Round(time.Millisecond),
	}).Info("data loaded")

	if st.ParseErrors > 0 {
		log.Warnf("%s rows could not be parsed and were skipped", cli.FormatNumber(int64(st.ParseErrors)))
	}
	if st.Records == 0 {
		log.Warn("no usable records in input")
	}
	return s, nil
}

// selection builds the filter selection from the filter flags. A flag that was
// never given selects every value; a flag given only empty values selects none.
func selection(cmd *cobra.Command) pipeline.Selection {
	flags := cmd.Flags()
	pick := func(name string, vals []string) []string {
		if !flags.Changed(name) {
			return nil
		}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if strings.TrimSpace(v) != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return pipeline.Selection{
		RenewalTypes:     pick("renewal", flagRenewal),
		PolicyStartYears: pick("year", flagYear),
		PlanTypes:        pick("plan", flagPlan),
		FamilyStructures: pick("family", flagFamily),
		AgeBands:         pick("age-band", flagAgeBand),
	}
}

func hasSelection(sel pipeline.Selection) bool {
	return sel.RenewalTypes != nil || sel.PolicyStartYears != nil || sel.PlanTypes != nil ||
		sel.FamilyStructures != nil || sel.AgeBands != nil
}

// analyze loads the data and runs the pipeline for the flag selection.
func analyze(cmd *cobra.Command) (*pipeline.Session, pipeline.Result, error) {
	s, err := loadSession(cmd.Context())
	if err != nil {
		return nil, pipeline.Result{}, err
	}

	f, err := pipeline.ResolveFilter(s.Dimensions(), selection(cmd))
	if err != nil {
		s.Close()
		return nil, pipeline.Result{}, err
	}

	res := pipeline.Compute(s, f)
	log.WithFields(log.Fields{
		"matched": res.Matched,
		"groups":  len(res.Groups),
	}).Debug("analysis complete")
	return s, res, nil
}
