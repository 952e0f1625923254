package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"panoptes/internal/models"
	"panoptes/pkg/config"
	"panoptes/pkg/duplicates"
	"panoptes/pkg/enhance"
	"panoptes/pkg/hashing"
	"panoptes/pkg/imageio"
	"panoptes/pkg/metadata"
	"panoptes/pkg/reconstruction"
	"panoptes/pkg/tiler"
	"panoptes/pkg/visualization"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "tile":
		err = runTile(os.Args[2:])
	case "reconstruct":
		err = runReconstruct(os.Args[2:])
	case "find-duplicates":
		err = runFindDuplicates(os.Args[2:])
	case "enhance":
		err = runEnhance(os.Args[2:])
	case "init-config":
		err = runInitConfig(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func usage() {
	fmt.Println("panoptes - FITS image tiling, duplicate detection and reconstruction")
	fmt.Println()
	fmt.Println("Usage: panoptes <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tile             Split FITS images into tiles with metadata")
	fmt.Println("  reconstruct      Rebuild a full image from its tiles")
	fmt.Println("  find-duplicates  Report tiles with identical content across a dataset")
	fmt.Println("  enhance          Produce contrast-enhanced grayscale images")
	fmt.Println("  init-config      Write a default configuration file")
	fmt.Println()
	fmt.Println("Run 'panoptes <command> -h' for command options.")
}

// listFITSFiles returns the FITS files directly inside a directory, sorted
// by name
func listFITSFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %v", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".fits", ".fit", ".fts":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func runTile(args []string) error {
	fs := flag.NewFlagSet("tile", flag.ExitOnError)
	inputDir := fs.String("input", "", "Directory containing FITS images")
	outputDir := fs.String("output", "", "Directory for tiles and metadata (default from config)")
	tileSize := fs.Int("tile-size", 0, "Tile edge length in pixels (default from config)")
	globalMin := fs.Float64("min", 0, "Global normalization lower bound (default from config)")
	globalMax := fs.Float64("max", 0, "Global normalization upper bound (default from config)")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	if *inputDir == "" {
		fs.Usage()
		return fmt.Errorf("-input is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *outputDir == "" {
		*outputDir = cfg.Output.TilesDir
	}
	if *tileSize == 0 {
		*tileSize = cfg.Tiling.TileSize
	}
	if *globalMin == 0 && *globalMax == 0 {
		*globalMin = cfg.Tiling.GlobalMin
		*globalMax = cfg.Tiling.GlobalMax
	}

	// Configuration problems abort before any image is touched
	tl, err := tiler.New(*tileSize, *globalMin, *globalMax)
	if err != nil {
		return err
	}

	files, err := listFITSFiles(*inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no FITS files found in %s", *inputDir)
	}

	fmt.Println("Initiating FITS image tiling process...")
	fmt.Printf("Found %d FITS files in directory.\n", len(files))

	failed := 0
	startTime := time.Now()

	for _, file := range files {
		base := filepath.Base(file)
		fmt.Printf("Processing %s...\n", base)

		src, err := imageio.DecodeSource(file)
		if err != nil {
			// Per-image failure: log and continue with the next file
			log.Printf("Skipping %s: %v", base, err)
			failed++
			continue
		}

		imageDir := filepath.Join(*outputDir, strings.TrimSuffix(base, filepath.Ext(base)))
		meta, err := tl.TileImage(src, base, imageDir)
		if err != nil {
			log.Printf("Tiling %s failed: %v", base, err)
			failed++
			continue
		}

		store := metadata.NewStore(imageDir)
		if err := store.Save(meta); err != nil {
			log.Printf("Saving metadata for %s failed: %v", base, err)
			failed++
			continue
		}

		fmt.Printf("  %d tiles written to %s\n", len(meta.Tiles), imageDir)
	}

	fmt.Printf("Tiling completed in %.2f seconds.\n", time.Since(startTime).Seconds())

	// Scan the fresh output for duplicate tiles, as a courtesy report
	fmt.Println("Checking for duplicate tiles...")
	records, err := metadata.NewStore(*outputDir).LoadAll()
	if err != nil {
		return err
	}
	reportDuplicates(duplicates.FindDuplicates(records))

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed; successful outputs were kept", failed, len(files))
	}
	return nil
}

func runReconstruct(args []string) error {
	fs := flag.NewFlagSet("reconstruct", flag.ExitOnError)
	metadataFile := fs.String("metadata", "", "Metadata JSON file of the image to rebuild")
	outputDir := fs.String("output", "", "Directory for the reconstructed image (default from config)")
	format := fs.String("format", "", "Output format, png or tiff (default from config)")
	previewEdge := fs.Int("preview", 0, "Also write an 8-bit preview at most this many pixels on a side (0 = off)")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	if *metadataFile == "" {
		fs.Usage()
		return fmt.Errorf("-metadata is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *outputDir == "" {
		*outputDir = cfg.Output.ReconstructedDir
	}
	if *format == "" {
		*format = cfg.Output.ReconstructionFormat
	}

	meta, err := metadata.LoadFile(*metadataFile)
	if err != nil {
		return err
	}

	fmt.Printf("Reconstructing %s from %d tiles...\n", meta.FitsFile, len(meta.Tiles))

	loader := reconstruction.DirLoader{Dir: filepath.Dir(*metadataFile)}
	full, err := reconstruction.Reconstruct(meta, loader)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	var outPath string
	switch *format {
	case "png":
		outPath = filepath.Join(*outputDir, "reconstructed_"+meta.FitsFile+".png")
		err = imageio.SaveGray16PNG(full, outPath)
	case "tiff":
		outPath = filepath.Join(*outputDir, "reconstructed_"+meta.FitsFile+".tiff")
		err = imageio.SaveGray16TIFF(full, outPath)
	default:
		return fmt.Errorf("unknown output format %q (want png or tiff)", *format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Reconstructed image saved to %s\n", outPath)

	if *previewEdge > 0 {
		previewPath := filepath.Join(*outputDir, "preview_"+meta.FitsFile+".png")
		if err := visualization.SavePreview(full, *previewEdge, previewPath); err != nil {
			return err
		}
		fmt.Printf("Preview saved to %s\n", previewPath)
	}
	return nil
}

func runFindDuplicates(args []string) error {
	fs := flag.NewFlagSet("find-duplicates", flag.ExitOnError)
	metadataDir := fs.String("metadata", "", "Directory tree containing metadata JSON files")
	fs.Parse(args)

	if *metadataDir == "" {
		fs.Usage()
		return fmt.Errorf("-metadata is required")
	}

	records, err := metadata.NewStore(*metadataDir).LoadAll()
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d metadata files covering %d tiles.\n", len(records), duplicates.CountTiles(records))
	reportDuplicates(duplicates.FindDuplicates(records))
	return nil
}

// reportDuplicates prints one line per duplicate group with every member
func reportDuplicates(groups []models.DuplicateGroup) {
	if len(groups) == 0 {
		fmt.Println("No duplicate tiles found.")
		return
	}

	fmt.Printf("Found %d duplicate groups:\n", len(groups))
	for _, g := range groups {
		refs := make([]string, len(g.Members))
		for i, m := range g.Members {
			refs[i] = fmt.Sprintf("%s/%s", m.SourceFile, m.TileID)
		}
		fmt.Printf("  %s: %s\n", g.Hash[:12], strings.Join(refs, ", "))
	}
}

// enhanceRecord is the sidecar JSON written next to each enhanced image
type enhanceRecord struct {
	ProcessedFile string          `json:"processed_file"`
	ImagePath     string          `json:"image_path"`
	Time          string          `json:"time"`
	Settings      enhance.Options `json:"settings"`
}

func runEnhance(args []string) error {
	fs := flag.NewFlagSet("enhance", flag.ExitOnError)
	inputDir := fs.String("input", "", "Directory containing FITS images")
	outputDir := fs.String("output", "", "Directory for enhanced images (default from config)")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	if *inputDir == "" {
		fs.Usage()
		return fmt.Errorf("-input is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *outputDir == "" {
		*outputDir = cfg.Output.EnhancedDir
	}

	opts := cfg.EnhanceOptions()
	if err := opts.Validate(); err != nil {
		return err
	}

	files, err := listFITSFiles(*inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no FITS files found in %s", *inputDir)
	}

	fmt.Println("Initiating transit-detection preprocessing sequence...")
	fmt.Printf("Found %d FITS files in directory.\n", len(files))

	var hashes []string
	failed := 0

	for _, file := range files {
		base := filepath.Base(file)

		src, err := imageio.DecodeSource(file)
		if err != nil {
			log.Printf("Skipping %s: %v", base, err)
			failed++
			continue
		}

		img, err := enhance.Enhance(src, opts)
		if err != nil {
			log.Printf("Enhancing %s failed: %v", base, err)
			failed++
			continue
		}

		imageHash := hashing.HashGray(img)
		imageDir := filepath.Join(*outputDir, imageHash[:16])
		if err := os.MkdirAll(imageDir, 0755); err != nil {
			log.Printf("Creating output for %s failed: %v", base, err)
			failed++
			continue
		}

		imagePath := filepath.Join(imageDir, imageHash+".png")
		if err := imageio.SaveGray8(img, imagePath); err != nil {
			log.Printf("Saving %s failed: %v", base, err)
			failed++
			continue
		}

		record := enhanceRecord{
			ProcessedFile: base,
			ImagePath:     filepath.Base(imagePath),
			Time:          time.Now().Format(time.RFC3339),
			Settings:      opts,
		}
		data, err := json.MarshalIndent(record, "", "    ")
		if err == nil {
			err = os.WriteFile(filepath.Join(imageDir, "metadata.json"), data, 0644)
		}
		if err != nil {
			log.Printf("Writing sidecar metadata for %s failed: %v", base, err)
			failed++
			continue
		}

		fmt.Printf("Enhanced image saved: %s\n", imagePath)
		hashes = append(hashes, imageHash)
	}

	if len(hashes) > 0 {
		fmt.Printf("Merkle root: %s\n", hashing.MerkleRoot(hashes))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed; successful outputs were kept", failed, len(files))
	}
	return nil
}

func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "Where to write the default configuration")
	fs.Parse(args)

	if err := config.CreateDefaultConfigFile(*configPath); err != nil {
		return err
	}
	fmt.Printf("Default configuration written to %s\n", *configPath)
	return nil
}
