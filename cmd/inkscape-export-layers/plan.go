package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/dmitry-t/inkscape-export-layers/internal/layers"
	"github.com/dmitry-t/inkscape-export-layers/internal/svgdoc"
)

// --- plan subcommand ---

var planCmd = &cobra.Command{
	Use:   "plan <drawing.svg | ->",
	Short: "List the figures an export would produce",
	Long: `Plan classifies the layers of the drawing and prints one line per
figure: its output name and the ids of the layers it shows. Nothing is
rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	plan, err := loadPlan(cmd, args[0])
	if err != nil {
		return err
	}
	if handled, err := writeStructured(cmd, os.Stdout, plan); handled {
		return err
	}

	reportWarnings(newLogger(), plan.Warnings)
	if len(plan.Jobs) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-30s  %s\n", "#", "Name", "Layers")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
	for i, job := range plan.Jobs {
		fmt.Fprintf(os.Stdout, "%-4d  %-30s  %s\n",
			i+1, truncate(job.OutputName, 30), strings.Join(job.VisibleIDs.Sorted(), ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d figure(s)\n", len(plan.Jobs))
	return nil
}

// --- layers subcommand ---

var layersCmd = &cobra.Command{
	Use:   "layers <drawing.svg | ->",
	Short: "List the tagged layers of a drawing",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayers,
}

func runLayers(cmd *cobra.Command, args []string) error {
	plan, err := loadPlan(cmd, args[0])
	if err != nil {
		return err
	}
	if handled, err := writeStructured(cmd, os.Stdout, plan.Groups); handled {
		return err
	}

	reportWarnings(newLogger(), plan.Warnings)

	fmt.Fprintf(os.Stdout, "%-4s  %-7s  %-20s  %-30s  %s\n", "#", "Tag", "ID", "Name", "Visible")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 75))
	for i, g := range plan.Groups {
		fmt.Fprintf(os.Stdout, "%-4d  %-7s  %-20s  %-30s  %t\n",
			i+1, g.Tag, truncate(g.ID, 20), truncate(g.Name, 30), g.Visible)
	}
	return nil
}

// --- shared helpers ---

// stdinPath names standard input as the drawing argument.
const stdinPath = "-"

// loadDocument parses the drawing at path, or from stdin for "-".
func loadDocument(path string, stdin io.Reader) (*svgdoc.Document, error) {
	if path == stdinPath {
		doc, err := svgdoc.ReadFrom(stdin)
		if err != nil {
			return nil, fmt.Errorf("parsing drawing from stdin: %w", err)
		}
		return doc, nil
	}
	return svgdoc.Load(path)
}

func loadPlan(cmd *cobra.Command, path string) (layers.Plan, error) {
	cfg, err := exportConfig()
	if err != nil {
		return layers.Plan{}, err
	}
	doc, err := loadDocument(path, cmd.InOrStdin())
	if err != nil {
		return layers.Plan{}, err
	}
	return layers.BuildPlan(doc, vocabulary(), cfg), nil
}

// writeStructured encodes v as YAML or JSON when the matching flag is set.
func writeStructured(cmd *cobra.Command, w io.Writer, v any) (bool, error) {
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	}
	return false, nil
}

func init() {
	for _, c := range []*cobra.Command{planCmd, layersCmd} {
		c.Flags().Bool("yaml", false, "output as YAML")
		c.Flags().Bool("json", false, "output as JSON")
		c.MarkFlagsMutuallyExclusive("yaml", "json")
		rootCmd.AddCommand(c)
	}
}
