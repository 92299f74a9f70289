package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-gradebook/internal/db"
	"github.com/mind-engage/mindengage-gradebook/internal/gradebook"
	"github.com/mind-engage/mindengage-gradebook/internal/logger"
	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
	"github.com/mind-engage/mindengage-gradebook/internal/standards"
	syncx "github.com/mind-engage/mindengage-gradebook/internal/sync"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	v   *viper.Viper
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logger.Nop()}

	root := &cobra.Command{
		Use:   "gradebookctl",
		Short: "Gradebook reports from the command line",
		Long: `gradebookctl computes composite grades, standards progress, final grades and
class analytics. Data comes from a JSON snapshot (--file) or from the
gradebook database (--db-driver/--db-dsn).

Every flag can also be set in .gradebookctl.yaml or as a GRADEBOOK_* variable,
e.g. GRADEBOOK_DB_DSN.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default .gradebookctl.yaml if present)")
	pf.StringP("file", "f", "", "Gradebook snapshot (JSON) to compute from")
	pf.Bool("legacy-scores", false, "Snapshot scores may be stored percentages rather than points")
	pf.String("db-driver", string(db.DriverSQLite), "Database driver (sqlite|postgres)")
	pf.String("db-dsn", "", "Database DSN (driver default when empty)")
	pf.String("scale", string(proficiency.DefaultScale), "Default proficiency scale")
	pf.String("scale-file", "", "YAML file with extra proficiency scales")
	pf.Float64("traditional-weight", 0.5, "Composite weight of the traditional score")
	pf.Float64("standards-weight", 0.5, "Composite weight of the standards score")
	pf.Float64("mastery-threshold", standards.DefaultMasteryThreshold, "Average proficiency counted as mastery")
	pf.StringP("output", "o", "json", "Output format (json|yaml)")
	pf.BoolP("verbose", "v", false, "Log to stderr")
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		newCompositeCmd(a),
		newProgressCmd(a),
		newFinalGradeCmd(a),
		newAnalyticsCmd(a),
		newScalesCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newEventsCmd(a),
	)
	return root
}

func (a *app) init() error {
	a.v.SetEnvPrefix("GRADEBOOK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	} else if _, err := os.Stat(".gradebookctl.yaml"); err == nil {
		a.v.SetConfigFile(".gradebookctl.yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if a.v.GetBool("verbose") {
		l, err := logger.New("dev")
		if err != nil {
			return err
		}
		a.log = l
	}
	if path := a.v.GetString("scale-file"); path != "" {
		if _, err := proficiency.Default().LoadYAMLFile(path); err != nil {
			return err
		}
	}
	if _, err := proficiency.Default().Lookup(a.scale()); err != nil {
		return err
	}
	for _, k := range []string{"traditional-weight", "standards-weight", "mastery-threshold"} {
		if f := a.v.GetFloat64(k); f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("--%s must be a non-negative number", k)
		}
	}
	switch a.v.GetString("output") {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", a.v.GetString("output"))
	}
	return nil
}

func (a *app) scale() proficiency.ScaleType {
	return proficiency.ScaleType(a.v.GetString("scale"))
}

func (a *app) settings() gradebook.Settings {
	st := gradebook.DefaultSettings()
	st.Scale = a.scale()
	st.Analytics.Scale = a.scale()
	st.Weights = standards.Weights{
		Traditional: a.v.GetFloat64("traditional-weight"),
		Standards:   a.v.GetFloat64("standards-weight"),
	}
	st.MasteryThreshold = a.v.GetFloat64("mastery-threshold")
	return st
}

// service returns a Service over the snapshot named by --file, or over the
// database when no file is given. The returned func releases it.
func (a *app) service(ctx context.Context) (*gradebook.Service, func(), error) {
	path := a.v.GetString("file")
	if path == "" {
		return a.dbService(ctx)
	}
	snap, err := readSnapshot(path)
	if err != nil {
		return nil, nil, err
	}
	svc := gradebook.NewService(gradebook.NewInMemoryStore(),
		gradebook.WithSettings(a.settings()),
		gradebook.WithLogger(a.log),
	)
	if _, err := svc.Import(ctx, snap, gradebook.ImportOptions{LegacyScores: a.v.GetBool("legacy-scores")}); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return svc, func() {}, nil
}

func (a *app) openDB(ctx context.Context) (*gradebook.SQLStore, *syncx.EventRepo, func(), error) {
	dbh, err := db.Open(ctx, db.Driver(a.v.GetString("db-driver")), a.v.GetString("db-dsn"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return gradebook.NewSQLStore(dbh), syncx.NewEventRepo(dbh), func() { _ = dbh.Close() }, nil
}

func (a *app) dbService(ctx context.Context) (*gradebook.Service, func(), error) {
	store, events, closeDB, err := a.openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := gradebook.NewService(store,
		gradebook.WithSettings(a.settings()),
		gradebook.WithEvents(events),
		gradebook.WithLogger(a.log),
	)
	return svc, closeDB, nil
}

func readSnapshot(path string) (gradebook.Snapshot, error) {
	var snap gradebook.Snapshot
	b, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap, nil
}

// render writes v in the configured format. YAML output keeps the JSON field
// names.
func (a *app) render(w io.Writer, v any) error {
	switch a.v.GetString("output") {
	case "yaml":
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return errors.New("unknown output format")
}
