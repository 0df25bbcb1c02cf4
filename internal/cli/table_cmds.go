package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gametext/internal/interpolation"
	"gametext/internal/language"
	"gametext/internal/lookup"
	"gametext/internal/model"
	"gametext/internal/table"
	"gametext/internal/textutil"
)

func convertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a string table between the binary and text formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseFormat(cmd, "from")
			if err != nil {
				return err
			}
			to, err := parseFormat(cmd, "to")
			if err != nil {
				return err
			}
			active, _ := cmd.Flags().GetString("active")

			m, err := a.loadTable(args[0], from, active)
			if err != nil {
				return err
			}
			if err := m.Save(args[1], to, a.langs); err != nil {
				return err
			}

			log.Info().
				Str("input", args[0]).
				Str("output", args[1]).
				Str("active", m.ActiveLanguage().String()).
				Msg("Converted string table")
			return nil
		},
	}

	cmd.Flags().String("from", "auto", "Input format: auto, csf, str or multistr")
	cmd.Flags().String("to", "auto", "Output format: auto, csf, str or multistr")
	cmd.Flags().String("active", "", "Language of single-language tables (code or name)")
	return cmd
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show languages, entry counts and categories of a string table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(cmd, "format")
			if err != nil {
				return err
			}
			m, err := a.loadTable(args[0], format, "")
			if err != nil {
				return err
			}

			loaded := m.Loaded()
			var rows [][]string
			for _, id := range loaded.IDs() {
				r := table.Measure(id, m.Entries(id))
				rows = append(rows, []string{
					id.String(),
					language.CodeFor(id),
					itoa(r.Entries),
					itoa(r.MaxLabel),
					itoa(r.MaxTextUnits),
					itoa(r.MaxSpeech),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (active language: %s)\n", args[0], m.ActiveLanguage())
			printTable(out,
				[]string{"Language", "Code", "Entries", "Max label", "Max text", "Max speech"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight})

			printTable(out, []string{"Category", "Labels"}, categoryRows(m.Pack(loaded)),
				[]columnAlignment{alignLeft, alignRight})
			return nil
		},
	}
}

// categoryRows counts labels per category, largest first.
func categoryRows(entries []model.MultiEntry) [][]string {
	counts := make(map[string]int)
	for i := range entries {
		cat := model.CategoryOf(entries[i].Label)
		if cat == "" {
			cat = "(none)"
		}
		counts[cat]++
	}
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c, itoa(counts[c])})
	}
	return rows
}

var errValidation = errors.New("string table failed validation")

func validateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check entry lengths, placeholders and language coverage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(cmd, "format")
			if err != nil {
				return err
			}
			requireAll, _ := cmd.Flags().GetBool("require-all")
			refName, _ := cmd.Flags().GetString("reference")
			ref, ok := language.Parse(refName)
			if !ok {
				return fmt.Errorf("unknown reference language %q", refName)
			}

			m, exceeded := a.newManager()
			if err := a.loadInto(m, args[0], format, ""); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			loaded := m.Loaded()

			var rows [][]string
			for _, r := range m.Validate(loaded) {
				status := "ok"
				if r.Exceeded() {
					status = "EXCEEDED"
				}
				rows = append(rows, []string{
					r.Language.String(),
					itoa(r.Entries),
					fmt.Sprintf("%d/%d", r.MaxLabel, model.MaxLabelLen),
					fmt.Sprintf("%d/%d", r.MaxTextBytes, model.MaxTextBytes),
					fmt.Sprintf("%d/%d", r.MaxTextUnits, model.MaxTextUnits),
					fmt.Sprintf("%d/%d", r.MaxSpeech, model.MaxSpeechLen),
					status,
				})
			}
			printTable(out,
				[]string{"Language", "Entries", "Label", "Text bytes", "Text units", "Speech", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft})

			issues := interpolation.CheckTable(m.Pack(loaded), ref, loaded)
			var issueRows [][]string
			for _, is := range issues {
				issueRows = append(issueRows, []string{
					is.Label,
					is.Language.String(),
					fmt.Sprint(is.Missing),
					fmt.Sprint(is.Extra),
				})
			}
			printTable(out, []string{"Label", "Language", "Missing", "Extra"}, issueRows, nil)

			var problems []string
			if *exceeded > 0 {
				problems = append(problems, fmt.Sprintf("%d languages exceed length caps", *exceeded))
			}
			if len(issues) > 0 {
				problems = append(problems, fmt.Sprintf("%d placeholder mismatches", len(issues)))
			}
			if requireAll {
				want := language.FilterUsable(a.langs)
				if !m.AllLoaded(want) {
					problems = append(problems, fmt.Sprintf("missing languages: %s", (want &^ loaded).String()))
				}
			}
			if len(problems) > 0 {
				for _, p := range problems {
					log.Error().Str("file", args[0]).Msg(p)
				}
				return fmt.Errorf("%w: %s", errValidation, args[0])
			}

			log.Info().Str("file", args[0]).Str("languages", loaded.String()).Msg("String table is valid")
			return nil
		},
	}

	cmd.Flags().Bool("require-all", false, "Fail unless every selected language holds entries")
	cmd.Flags().String("reference", "US", "Language whose placeholders the others must match")
	return cmd
}

func mergeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <base> <overlay> <output>",
		Short: "Overwrite base entries with the overlay and append new labels",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(cmd, "format")
			if err != nil {
				return err
			}
			base, err := a.loadTable(args[0], format, "")
			if err != nil {
				return err
			}
			overlay, err := a.loadTable(args[1], format, "")
			if err != nil {
				return err
			}

			before := base.Loaded()
			base.MergeOverwrite(overlay, overlay.Loaded())
			ensureActive(base)

			if err := base.Save(args[2], format.Resolve(args[2]), a.langs); err != nil {
				return err
			}
			log.Info().
				Str("base", args[0]).
				Str("overlay", args[1]).
				Str("output", args[2]).
				Str("added_languages", (base.Loaded() &^ before).String()).
				Msg("Merged string tables")
			return nil
		},
	}
}

func lookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <file> <label>",
		Short: "Print a label in every loaded language, ignoring letter case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(cmd, "format")
			if err != nil {
				return err
			}
			m, err := a.loadTable(args[0], format, "")
			if err != nil {
				return err
			}

			var rows [][]string
			for _, id := range m.Loaded().IDs() {
				entries := m.Entries(id)
				e, ok := lookup.Entry(lookup.Build(entries), entries, args[1])
				if !ok {
					continue
				}
				rows = append(rows, []string{id.String(), e.Label, textutil.Truncate(textutil.OneLine(e.Text.String()), 80), e.Speech})
			}
			if len(rows) == 0 {
				return fmt.Errorf("label %q not found in %s", args[1], args[0])
			}
			printTable(cmd.OutOrStdout(), []string{"Language", "Label", "Text", "Speech"}, rows, nil)
			return nil
		},
	}
}
