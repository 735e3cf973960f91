package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/mhornak/faceclock/internal/config"
	"github.com/mhornak/faceclock/internal/extractor"
	"github.com/mhornak/faceclock/internal/liveness"
	"github.com/mhornak/faceclock/internal/recognize"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [prev-frame] [curr-frame]",
	Short: "Run one recognition attempt from two camera frames",
	Long: `Run one recognition attempt against the gallery and the ledger.

The two frames are consecutive camera captures; their variation drives
the liveness check. The probe embedding is extracted from the current
frame, so EXTRACTOR_URL must be set.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Extractor.URL == "" {
		return errors.New("EXTRACTOR_URL environment variable is required for recognition")
	}

	g, err := openGallery(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	led, err := openLedger(store, cfg)
	if err != nil {
		return err
	}

	prev, err := readFrame(args[0])
	if err != nil {
		return err
	}
	currBytes, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}
	curr, err := liveness.DecodeFrame(currBytes)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[1], err)
	}

	detections, err := extractor.NewClient(cfg.Extractor.URL).Extract(cmd.Context(), currBytes)
	if err != nil {
		return fmt.Errorf("extracting probe embedding: %w", err)
	}
	if len(detections) == 0 {
		return errors.New("no face detected in the current frame")
	}

	recognizer := recognize.New(g, led, cfg.Recognition.Tolerance, cfg.Liveness.VariationThreshold)
	outcome, err := recognizer.Attempt(cmd.Context(), detections[0].Embedding, prev, curr, time.Now())
	if err != nil {
		return fmt.Errorf("recognition attempt: %w", err)
	}

	encoded, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func readFrame(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, err := liveness.DecodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
