package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gametext/internal/filewalker"
	"gametext/internal/graph"
	"gametext/internal/language"
	"gametext/internal/parser"
	"gametext/internal/store"
	"gametext/internal/table"
	"gametext/internal/worker"
)

// loadAll loads every discovered table on the worker pool. Each task owns
// its Manager.
func (a *app) loadAll(ctx context.Context, files []filewalker.FileEntry) []worker.Task[filewalker.FileEntry, *table.Manager] {
	pool := worker.NewPool(a.cfg.WorkerCount, func(_ context.Context, fe filewalker.FileEntry) (*table.Manager, error) {
		return a.loadTable(fe.Path, fe.Format, "")
	})
	return pool.Execute(ctx, files)
}

// discover returns the tables under path, or path itself when it is a file.
func discover(path string) ([]filewalker.FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filewalker.NewWalker().Walk(path)
	}
	return []filewalker.FileEntry{{
		Path:   path,
		Rel:    filepath.Base(path),
		Ext:    filepath.Ext(path),
		Format: parser.FormatForPath(path),
	}}, nil
}

func scanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <directory>",
		Short: "Load every string table under a directory and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			files, err := filewalker.NewWalker().Walk(args[0])
			if err != nil {
				return err
			}

			var rows [][]string
			for _, task := range a.loadAll(ctx, files) {
				if task.Err != nil {
					rows = append(rows, []string{task.Input.Rel, task.Input.Format.String(), "-", "-", task.Err.Error()})
					continue
				}
				m := task.Result
				total := 0
				for _, id := range m.Loaded().IDs() {
					total += len(m.Entries(id))
				}
				rows = append(rows, []string{task.Input.Rel, task.Input.Format.String(), m.Loaded().String(), itoa(total), "ok"})
			}
			printTable(cmd.OutOrStdout(), []string{"File", "Format", "Languages", "Entries", "Status"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		},
	}
}

func publishCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <file-or-directory>",
		Short: "Store string tables in the table database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			files, err := discover(args[0])
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("table")
			if name != "" && len(files) != 1 {
				return fmt.Errorf("--table needs a single file, found %d", len(files))
			}

			st, err := store.Open(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()

			tasks := a.loadAll(ctx, files)
			failed := worker.Failed(tasks)
			for _, task := range tasks {
				if task.Err != nil {
					continue
				}
				tableName := name
				if tableName == "" {
					tableName = filewalker.TableName(task.Input.Rel)
				}
				m := task.Result
				for _, id := range m.Loaded().IDs() {
					changed, err := st.SaveTable(ctx, tableName, id, m.Entries(id))
					if err != nil {
						return fmt.Errorf("publish %s: %w", task.Input.Rel, err)
					}
					log.Info().
						Str("table", tableName).
						Str("language", id.String()).
						Int("entries", len(m.Entries(id))).
						Int("changed", changed).
						Msg("Stored table language")
				}
			}

			log.Info().Int("files", len(files)-len(failed)).Int("failed", len(failed)).Msg("Publish complete")
			if len(failed) > 0 {
				return fmt.Errorf("%d tables failed to load, first %s: %w", len(failed), failed[0].Input.Rel, failed[0].Err)
			}
			return nil
		},
	}

	cmd.Flags().String("table", "", "Table name (defaults to the file path without extension)")
	return cmd
}

func tablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables held in the table database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			st, err := store.Open(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.Tables(ctx)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, name := range names {
				langs, err := st.Languages(ctx, name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, langs.String()})
			}
			printTable(cmd.OutOrStdout(), []string{"Table", "Languages"}, rows, nil)
			return nil
		},
	}
}

func pullCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull <table> <output>",
		Short: "Write a stored table to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			format, err := parseFormat(cmd, "format")
			if err != nil {
				return err
			}
			active, _ := cmd.Flags().GetString("active")

			st, err := store.Open(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()

			stored, err := st.Languages(ctx, args[0])
			if err != nil {
				return err
			}
			want := stored & a.langs
			if want.Empty() {
				return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
			}

			m, _ := a.newManager()
			for _, id := range want.IDs() {
				entries, err := st.LoadTable(ctx, args[0], id)
				if err != nil {
					return err
				}
				m.SetEntries(id, entries)
			}
			if active != "" {
				id, ok := language.Parse(active)
				if !ok {
					return fmt.Errorf("unknown language %q", active)
				}
				m.SetActiveLanguage(id)
			}
			ensureActive(m)

			if err := m.Save(args[1], format, a.langs); err != nil {
				return err
			}
			log.Info().Str("table", args[0]).Str("output", args[1]).Str("languages", want.String()).Msg("Pulled string table")
			return nil
		},
	}

	cmd.Flags().String("active", "", "Language written to single-language formats")
	return cmd
}

func graphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Export a string table into Neo4j and show its categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			format, err := parseFormat(cmd, "format")
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("table")
			if name == "" {
				name = filewalker.TableName(filepath.Base(args[0]))
			}

			m, err := a.loadTable(args[0], format, "")
			if err != nil {
				return err
			}
			nodes := graph.BuildLabelNodes(m.Pack(m.Loaded()))

			driver, err := neo4j.NewDriverWithContext(a.cfg.Neo4jURI, neo4j.BasicAuth(a.cfg.Neo4jUser, a.cfg.Neo4jPassword, ""))
			if err != nil {
				return fmt.Errorf("connect Neo4j: %w", err)
			}
			defer driver.Close(ctx)
			if err := driver.VerifyConnectivity(ctx); err != nil {
				return fmt.Errorf("verify Neo4j connectivity: %w", err)
			}
			log.Info().Msg("Connected to Neo4j")

			exporter := graph.NewExporter(driver)
			if err := exporter.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := exporter.ExportTable(ctx, name, nodes); err != nil {
				return err
			}

			counts, err := graph.NewQuerier(driver).CategoryCounts(ctx, name)
			if err != nil {
				return err
			}
			var rows [][]string
			for _, c := range counts {
				rows = append(rows, []string{c.Category, fmt.Sprint(c.Labels)})
			}
			out := cmd.OutOrStdout()
			printTable(out, []string{"Category", "Labels"}, rows, []columnAlignment{alignLeft, alignRight})

			coverage, err := graph.NewQuerier(driver).LanguageCoverage(ctx, name)
			if err != nil {
				return err
			}
			rows = nil
			for _, c := range coverage {
				rows = append(rows, []string{c.Code, fmt.Sprint(c.Labels)})
			}
			printTable(out, []string{"Language", "Labels"}, rows, []columnAlignment{alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().String("table", "", "Graph table name (defaults to the file name without extension)")
	return cmd
}
