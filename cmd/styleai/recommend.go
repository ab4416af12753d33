package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/styleai/internal/core"
	"github.com/jo-hoe/styleai/internal/imaging"
	"github.com/jo-hoe/styleai/internal/shopping"
	"github.com/jo-hoe/styleai/internal/skintone"
	"github.com/jo-hoe/styleai/internal/stylist"
)

type profileFlags struct {
	tone      string
	undertone string
	occasion  string
	gender    string
	budget    string
	vibe      string
	weather   string
	color     string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tone, "tone", string(stylist.DefaultSkinTone), "Skin tone: Fair, Medium, Olive or Deep")
	cmd.Flags().StringVar(&f.undertone, "undertone", string(stylist.DefaultUndertone), "Undertone: warm, cool or neutral")
	cmd.Flags().StringVar(&f.occasion, "occasion", stylist.DefaultOccasion, "Occasion, e.g. wedding, office, party")
	cmd.Flags().StringVar(&f.gender, "gender", stylist.DefaultGender, "female or male")
	cmd.Flags().StringVar(&f.budget, "budget", stylist.DefaultBudget, "low, medium or high")
	cmd.Flags().StringVar(&f.vibe, "vibe", stylist.DefaultVibe, "Desired vibe")
	cmd.Flags().StringVar(&f.weather, "weather", stylist.DefaultWeather, "Weather")
	cmd.Flags().StringVar(&f.color, "color", "", "Optional color keyword for shopping searches")
}

func (f *profileFlags) profile() (stylist.Profile, error) {
	tone, ok := skintone.ParseSkinTone(f.tone)
	if !ok {
		return stylist.Profile{}, fmt.Errorf("unknown skin tone: %s", f.tone)
	}
	undertone, ok := skintone.ParseUndertone(f.undertone)
	if !ok {
		return stylist.Profile{}, fmt.Errorf("unknown undertone: %s", f.undertone)
	}
	return stylist.Profile{
		SkinTone:  tone,
		Undertone: undertone,
		Occasion:  f.occasion,
		Gender:    f.gender,
		Budget:    f.budget,
		Vibe:      f.vibe,
		Weather:   f.weather,
		Color:     f.color,
	}.WithDefaults(), nil
}

func newRecommendCmd() *cobra.Command {
	var (
		flags        profileFlags
		tablesPath   string
		productLimit int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print a recommendation bundle from the built-in tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := flags.profile()
			if err != nil {
				return err
			}

			tables, err := stylist.DefaultTables()
			if tablesPath != "" {
				tables, err = stylist.LoadTables(tablesPath)
			}
			if err != nil {
				return err
			}

			service := stylist.NewService(tables,
				stylist.WithLinkBuilder(shopping.NewBuilder()),
				stylist.WithProductLimit(productLimit))
			return printJSON(cmd.OutOrStdout(), service.Recommend(cmd.Context(), profile))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&tablesPath, "tables", "", "YAML file replacing the built-in recommendation tables")
	cmd.Flags().IntVar(&productLimit, "products", stylist.DefaultProductLimit, "Products per shopping platform")
	return cmd
}

func newPaletteCmd() *cobra.Command {
	var (
		flags  profileFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Render the palette for a skin tone as a PNG swatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := flags.profile()
			if err != nil {
				return err
			}
			tables, err := stylist.DefaultTables()
			if err != nil {
				return err
			}

			bundle := tables.Lookup(profile)
			png, err := imaging.RenderSwatch(bundle.PaletteHexes(), core.SwatchWidth, core.SwatchHeight)
			if err != nil {
				return err
			}
			return writeOutput(output, png, cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "palette.png", "Output file, - for stdout")
	return cmd
}

func newTrendingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List trending products with storefront links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), shopping.NewBuilder().Trending(limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of products (default 6)")
	return cmd
}
