package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dmitry-t/inkscape-export-layers/internal/layers"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

// bindFlags binds each viper key to the named flag of fs.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

// setDefaults registers the defaults for keys that may come only from the
// config file or the environment.
func setDefaults() {
	d := types.DefaultExportConfig()
	viper.SetDefault("output_dir", d.OutputDir)
	viper.SetDefault("format", string(d.Format))
	viper.SetDefault("dpi", d.DPI)
	viper.SetDefault("hidden_mode", string(d.HiddenMode))
	viper.SetDefault("layer_order", string(d.LayerOrder))
	viper.SetDefault("jpeg_quality", d.JPEGQuality)
	viper.SetDefault("backend", string(d.Backend))
	viper.SetDefault("jpeg_backend", string(d.JPEGBackend))
}

// exportConfig materializes the merged flag, environment, and config file
// settings into an ExportConfig.
func exportConfig() (types.ExportConfig, error) {
	cfg := types.ExportConfig{
		OutputDir:       viper.GetString("output_dir"),
		Prefix:          viper.GetString("prefix"),
		Format:          types.Format(viper.GetString("format")),
		FitContents:     viper.GetBool("fit_contents"),
		DPI:             viper.GetInt("dpi"),
		Enumerate:       viper.GetBool("enumerate"),
		ShowLayersBelow: viper.GetBool("show_layers_below"),
		VisibleOnly:     viper.GetBool("visible_only"),
		HiddenMode:      types.HiddenMode(viper.GetString("hidden_mode")),
		LayerOrder:      types.LayerOrder(viper.GetString("layer_order")),
		JPEGQuality:     viper.GetInt("jpeg_quality"),
		Backend:         types.Backend(viper.GetString("backend")),
		JPEGBackend:     types.JPEGBackend(viper.GetString("jpeg_backend")),
		InkscapeBin:     viper.GetString("inkscape_bin"),
		MagickBin:       viper.GetString("magick_bin"),
		HistoryDB:       viper.GetString("history_db"),
		Manifest:        viper.GetString("manifest"),
	}
	if cfg.Format == "jpg" {
		cfg.Format = types.FormatJPEG
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// vocabulary returns the configured tag prefixes, falling back to the
// defaults for a family left empty.
func vocabulary() layers.TagVocabulary {
	v := layers.DefaultVocabulary()
	if fixed := viper.GetStringSlice("tags.fixed"); len(fixed) > 0 {
		v.Fixed = fixed
	}
	if export := viper.GetStringSlice("tags.export"); len(export) > 0 {
		v.Export = export
	}
	return v
}
