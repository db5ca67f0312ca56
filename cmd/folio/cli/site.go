package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/validate"
)

func newSiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Back up and restore the site content",
		Long:  "Export the site-data document to YAML, or import a previously exported file.",
	}

	cmd.AddCommand(newSiteExportCmd())
	cmd.AddCommand(newSiteImportCmd())

	return cmd
}

// ---------- site export ----------

func newSiteExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the site-data document as YAML",
		Example: `  folio site export                 # writes to stdout
  folio site export -o backup.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSiteExport(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runSiteExport(output string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	data, err := st.GetOrCreateSiteData(context.Background())
	if err != nil {
		return fmt.Errorf("load site data: %w", err)
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode site data: %w", err)
	}

	if output == "" {
		os.Stdout.Write(raw)
		return nil
	}
	if err := os.WriteFile(output, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("Exported site data to %s\n", output)
	return nil
}

// ---------- site import ----------

func newSiteImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   "Import a site-data document from YAML",
		Example: `  folio site import backup.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSiteImport(args[0])
		},
	}

	return cmd
}

func runSiteImport(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var data model.SiteData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	// Imports go through the same validation as API writes.
	if errs := validate.SiteData(data); len(errs) > 0 {
		for _, fe := range errs {
			fmt.Fprintf(os.Stderr, "  %s: %s (%s)\n", fe.Field, fe.Message, fe.Code)
		}
		return fmt.Errorf("%s has %d validation error(s)", path, len(errs))
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.ReplaceSiteData(context.Background(), data); err != nil {
		return fmt.Errorf("save site data: %w", err)
	}

	fmt.Printf("Imported site data from %s\n", path)
	return nil
}
