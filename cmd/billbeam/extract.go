package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gana36/billbeam/internal/extract"
	"github.com/gana36/billbeam/internal/share"
)

var extractCmd = &cobra.Command{
	Use:   "extract --image receipt.jpg",
	Short: "Read a receipt photo and print the extracted receipt as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, "gemini_model")
		if err != nil {
			return err
		}
		if cfg.GeminiAPIKey == "" {
			return extract.ErrMissingAPIKey
		}

		path, _ := cmd.Flags().GetString("image")
		if path == "" {
			return errors.New("--image is required")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		mime, _ := cmd.Flags().GetString("mime-type")

		extractor, err := extract.NewGeminiExtractor(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		img := extract.Image{Data: data, MIMEType: mime}
		if err := img.Validate(); err != nil {
			return err
		}
		receipt, err := extractor.Extract(cmd.Context(), img)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(receipt); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d items, total %s\n", len(receipt.Items), share.Money(receipt.Total))
		return nil
	},
}

func init() {
	extractCmd.Flags().String("image", "", "path to the receipt photo")
	extractCmd.Flags().String("mime-type", "", "image MIME type; sniffed from the file when empty")
	extractCmd.Flags().String("gemini-model", extract.DefaultModel, "Gemini model to use")
}
