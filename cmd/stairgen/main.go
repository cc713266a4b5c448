package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawnchairsociety/stairgen/internal/cellgraph"
	"github.com/lawnchairsociety/stairgen/internal/config"
	"github.com/lawnchairsociety/stairgen/internal/database"
	"github.com/lawnchairsociety/stairgen/internal/generator"
	"github.com/lawnchairsociety/stairgen/internal/layout"
	"github.com/lawnchairsociety/stairgen/internal/logger"
)

var version = "0.3.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "stairgen",
		Short:   "Assign floor heights and place stairs on dungeon layouts",
		Version: version,
		Long: `stairgen reads a layout of rooms and corridors, gives every cell a floor
height and places stairs so that neighboring cells can always be walked between.

Results are written as YAML and can be recorded in a run database.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("logging", "data/logging.yaml", "Path to logging config YAML file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("logging")
		logConfig, err := logger.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, using default logging\n", err)
		}
		return logger.Initialize(logConfig)
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate heights and stairs for a layout",
		RunE:  runGenerate,
	}
	generateCmd.Flags().String("layout", "data/layout.yaml", "Path to layout YAML file")
	generateCmd.Flags().String("config", "data/generation.yaml", "Path to generation config YAML file")
	generateCmd.Flags().Int64("seed", 0, "Generation seed (default: random based on current time)")
	generateCmd.Flags().String("strategy", "", "Override the configured strategy: island|legacy")
	generateCmd.Flags().StringP("out", "o", "", "Output file (empty for stdout)")
	generateCmd.Flags().String("db", "", "Record the run in this SQLite database")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a seed always produces the same stairs",
		RunE:  runVerify,
	}
	verifyCmd.Flags().String("layout", "data/layout.yaml", "Path to layout YAML file")
	verifyCmd.Flags().String("config", "data/generation.yaml", "Path to generation config YAML file")
	verifyCmd.Flags().Int64("seed", 1, "Generation seed")
	verifyCmd.Flags().Int("runs", 5, "Number of generations to compare")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE:  runHistory,
	}
	historyCmd.Flags().String("db", "data/stairgen.db", "Path to run database")
	historyCmd.Flags().String("layout", "", "Only list runs of this layout")
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs (0 for all)")

	renderCmd := &cobra.Command{
		Use:   "render <result.yaml>",
		Short: "Draw a result file as a top-down height map",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().Bool("legend", true, "Show legend")

	migrateCmd := &cobra.Command{
		Use:   "migrate-to-postgres",
		Short: "Copy recorded runs from SQLite to PostgreSQL",
		RunE:  runMigrate,
	}
	defaults := database.DefaultPostgresConfig()
	migrateCmd.Flags().String("sqlite", "data/stairgen.db", "Path to SQLite database")
	migrateCmd.Flags().String("pg-host", defaults.Host, "PostgreSQL host")
	migrateCmd.Flags().Int("pg-port", defaults.Port, "PostgreSQL port")
	migrateCmd.Flags().String("pg-user", "stairgen", "PostgreSQL user")
	migrateCmd.Flags().String("pg-password", "stairgen", "PostgreSQL password")
	migrateCmd.Flags().String("pg-database", "stairgen", "PostgreSQL database name")
	migrateCmd.Flags().String("pg-sslmode", defaults.SSLMode, "PostgreSQL SSL mode")
	migrateCmd.Flags().Bool("dry-run", false, "Show what would be migrated without making changes")

	rootCmd.AddCommand(generateCmd, verifyCmd, historyCmd, renderCmd, migrateCmd)

	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func loadInputs(cmd *cobra.Command) (*layout.File, *cellgraph.Graph, *config.GenerationConfig, error) {
	layoutPath, _ := cmd.Flags().GetString("layout")
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Lookup("strategy") != nil {
		if name, _ := cmd.Flags().GetString("strategy"); name != "" {
			if cfg.Strategy, err = config.ParseStrategy(name); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	f, g, err := layout.LoadGraph(layoutPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if f.Name == "" {
		f.Name = layoutPath
	}
	return f, g, cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f, g, cfg, err := loadInputs(cmd)
	if err != nil {
		return err
	}

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info("Generation seed selected", "seed", seed, "random", true)
	} else {
		logger.Info("Generation seed selected", "seed", seed, "random", false)
	}

	start := time.Now()
	res, err := generator.Generate(g, seed, cfg)
	if err != nil {
		return err
	}
	logger.Debug("Generation timing", "layout", f.Name, "duration", time.Since(start))
	if !res.Converged {
		logger.Warning("Generation did not converge", "layout", f.Name, "unresolved", res.Unresolved)
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		if err := layout.WriteResult(out, f.Name, g, res); err != nil {
			return err
		}
		fmt.Printf("Result written to %s\n", out)
	} else {
		if err := layout.Render(os.Stdout, layout.NewResult(f.Name, g, res), false); err != nil {
			return err
		}
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		return nil
	}
	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.RecordRun(database.Run{
		LayoutName:  f.Name,
		Seed:        seed,
		Strategy:    res.Strategy.String(),
		Converged:   res.Converged,
		Fingerprint: layout.Fingerprint(g),
	}, runStairs(g.AllStairs()))
	if err != nil {
		return err
	}
	logger.Info("Run recorded", "id", id, "db", dbPath)
	return nil
}

func runStairs(stairs []cellgraph.StairInfo) []database.RunStair {
	out := make([]database.RunStair, 0, len(stairs))
	for _, s := range stairs {
		out = append(out, database.RunStair{
			OwnerCell:     s.OwnerCell,
			ConnectedCell: s.ConnectedToCell,
			X:             s.IPosition.X,
			Y:             s.IPosition.Y,
			Z:             s.IPosition.Z,
			Rotation:      s.Rotation.Degrees(),
		})
	}
	return out
}

func runVerify(cmd *cobra.Command, args []string) error {
	runs, _ := cmd.Flags().GetInt("runs")
	seed, _ := cmd.Flags().GetInt64("seed")
	if runs < 2 {
		return fmt.Errorf("--runs must be at least 2, got %d", runs)
	}

	var first string
	for i := 0; i < runs; i++ {
		// Generate mutates the graph, so every run starts from a fresh load.
		f, g, cfg, err := loadInputs(cmd)
		if err != nil {
			return err
		}
		if _, err := generator.Generate(g, seed, cfg); err != nil {
			return err
		}

		fp := layout.Fingerprint(g)
		if i == 0 {
			first = fp
			fmt.Printf("Layout %q seed %d: %s\n", f.Name, seed, fp)
			continue
		}
		if fp != first {
			return fmt.Errorf("run %d produced %s, expected %s", i+1, fp, first)
		}
	}

	fmt.Printf("All %d runs identical.\n", runs)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	name, _ := cmd.Flags().GetString("layout")
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(name, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAYOUT\tSEED\tSTRATEGY\tSTAIRS\tCONVERGED\tFINGERPRINT\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%v\t%.12s\t%s\n",
			r.ID, r.LayoutName, r.Seed, r.Strategy, r.StairCount, r.Converged,
			r.Fingerprint, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runRender(cmd *cobra.Command, args []string) error {
	legend, _ := cmd.Flags().GetBool("legend")

	result, err := layout.ReadResult(args[0])
	if err != nil {
		return err
	}
	return layout.Render(os.Stdout, result, legend)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	sqlitePath, _ := flags.GetString("sqlite")
	dryRun, _ := flags.GetBool("dry-run")

	pg := database.DefaultPostgresConfig()
	pg.Host, _ = flags.GetString("pg-host")
	pg.Port, _ = flags.GetInt("pg-port")
	pg.User, _ = flags.GetString("pg-user")
	pg.Password, _ = flags.GetString("pg-password")
	pg.Database, _ = flags.GetString("pg-database")
	pg.SSLMode, _ = flags.GetString("pg-sslmode")

	logger.Info("Opening SQLite database", "path", sqlitePath)
	src, err := database.Open(sqlitePath)
	if err != nil {
		return err
	}
	defer src.Close()

	logger.Info("Opening PostgreSQL database", "user", pg.User, "host", pg.Host, "port", pg.Port, "database", pg.Database)
	dst, err := database.OpenWithConfig(database.Config{Driver: string(database.DialectPostgres), Postgres: pg})
	if err != nil {
		return err
	}
	defer dst.Close()

	if dryRun {
		logger.Info("Dry run, no changes will be made")
	}
	stats, err := database.CopyRuns(src, dst, dryRun)
	if err != nil {
		return err
	}
	logger.Always("Migration complete", "runs", stats.Runs, "stairs", stats.Stairs, "dry_run", dryRun)
	return nil
}
