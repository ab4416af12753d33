package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/styleai/internal/core"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "styleai",
		Short: "Skin tone analysis and styling recommendations",
		Long: `styleai classifies skin tone and undertone from a photo and looks up
matching color palettes, outfits and shopping links.

Run the HTTP server with cmd/server for the web interface.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := core.NewLogger(cmd.ErrOrStderr(), level, "text")
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			slog.SetDefault(logger)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newRecommendCmd())
	root.AddCommand(newPaletteCmd())
	root.AddCommand(newTrendingCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
