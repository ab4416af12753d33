package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jo-hoe/styleai/internal/facedetect"
	"github.com/jo-hoe/styleai/internal/skintone"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		cascadePath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Classify skin tone and undertone of a photo",
		Long: `Classify skin tone and undertone of a photo.

Without --face-cascade the center of the image is sampled. With a Haar
cascade file the cheeks of the largest detected face are sampled instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []skintone.Option
			if cascadePath != "" {
				detector, err := facedetect.NewCascadeDetector(cascadePath)
				if err != nil {
					return err
				}
				defer func() {
					_ = detector.Close()
				}()
				opts = append(opts, skintone.WithFaceDetector(detector))
			}

			result, err := skintone.NewAnalyzer(opts...).AnalyzeFile(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "skin tone: %s\nundertone: %s\nhex:       %s\nregion:    %s\n",
				result.SkinTone, result.Undertone, result.Hex, result.Region)
			return err
		},
	}
	cmd.Flags().StringVar(&cascadePath, "face-cascade", "", "Path to a Haar cascade XML file for face detection")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}
