// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the inkscape-export-layers CLI.
//
// Layers of an Inkscape drawing are tagged in their labels: "[fixed]" (or
// "[f]") layers appear in every figure, and each "[export]" (or "[e]")
// layer produces one figure of its own.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the inkscape-export-layers CLI.
var rootCmd = &cobra.Command{
	Use:   "inkscape-export-layers",
	Short: "Export tagged layers of an Inkscape drawing as separate figures",
	Long: `inkscape-export-layers derives a batch of figures from one layered SVG
drawing. Layers labeled "[fixed] ..." or "[f] ..." are shown in every figure;
every layer labeled "[export] ..." or "[e] ..." produces a figure showing that
layer together with the fixed ones.

Use "plan" to preview the figures, "export" to render them, and "history" to
list past runs recorded in the export ledger.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./inkscape-export-layers.yaml or ~/.config/inkscape-export-layers/config.yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Resolution settings shared by plan, layers, and export.
	rootCmd.PersistentFlags().Bool("enumerate", false, "prefix names with the layer position (001_name)")
	rootCmd.PersistentFlags().Bool("show-layers-below", false, "also show the non-fixed layers below each exported layer")
	rootCmd.PersistentFlags().Bool("visible-only", false, "export only layers visible in the drawing")
	rootCmd.PersistentFlags().String("layer-order", "document", "layer scan order: document (bottom first) or panel (top first)")
	rootCmd.PersistentFlags().StringSlice("fixed-tag", nil, "label prefixes of fixed layers (default [fixed], [f])")
	rootCmd.PersistentFlags().StringSlice("export-tag", nil, "label prefixes of exported layers (default [export], [e])")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"enumerate":         "enumerate",
		"show_layers_below": "show-layers-below",
		"visible_only":      "visible-only",
		"layer_order":       "layer-order",
		"tags.fixed":        "fixed-tag",
		"tags.export":       "export-tag",
		"no_color":          "no-color",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("inkscape-export-layers")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "inkscape-export-layers"))
		}
	}

	viper.SetEnvPrefix("INKSCAPE_EXPORT_LAYERS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		newLogger().Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
