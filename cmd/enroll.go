package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhornak/faceclock/internal/config"
	"github.com/mhornak/faceclock/internal/extractor"
	"github.com/mhornak/faceclock/internal/recognize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [identity] [image]",
	Short: "Enroll a person into the gallery from a face photo",
	Long: `Enroll a person into the embedding gallery.

With an identity and an image path, registers that single person. The
photo must contain exactly one face.

With --dir, enrolls every image in a directory in one run; the identity
is taken from the file name without its extension (jan_novak.jpg
enrolls "jan_novak").`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("dir", "", "Directory of face photos to enroll in batch")
}

// imageExtensions are the file types considered during batch enrollment.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Extractor.URL == "" {
		return errors.New("EXTRACTOR_URL environment variable is required for enrollment")
	}

	g, err := openGallery(cfg)
	if err != nil {
		return err
	}
	registrar := recognize.NewRegistrar(extractor.NewClient(cfg.Extractor.URL), g, cfg.Gallery.Path)

	dir := mustGetString(cmd, "dir")
	if dir != "" {
		return enrollDirectory(cmd, registrar, dir)
	}

	if len(args) != 2 {
		return errors.New("expected an identity and an image path (or --dir)")
	}
	return enrollOne(cmd, registrar, args[0], args[1])
}

func enrollOne(cmd *cobra.Command, registrar *recognize.Registrar, identity, path string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := registrar.Register(cmd.Context(), identity, frame)
	if err != nil {
		return fmt.Errorf("enrolling %s: %w", identity, err)
	}
	if !result.Registered {
		return fmt.Errorf("enrolling %s: %s", identity, result.Reason)
	}

	fmt.Printf("Enrolled %s\n", identity)
	return nil
}

func enrollDirectory(cmd *cobra.Command, registrar *recognize.Registrar, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	bar := progressbar.Default(int64(len(paths)), "Enrolling")
	enrolled, skipped := 0, 0
	for _, path := range paths {
		identity := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		frame, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		result, err := registrar.Register(cmd.Context(), identity, frame)
		if err != nil {
			return fmt.Errorf("enrolling %s: %w", identity, err)
		}
		if result.Registered {
			enrolled++
		} else {
			skipped++
			fmt.Printf("\nSkipped %s: %s\n", identity, result.Reason)
		}
		bar.Add(1)
	}

	fmt.Printf("\nEnrolled %d, skipped %d\n", enrolled, skipped)
	return nil
}
