package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/book-expert/bulletin-service/internal/chunk"
	"github.com/book-expert/bulletin-service/internal/config"
	"github.com/book-expert/bulletin-service/internal/script"
	"github.com/book-expert/bulletin-service/internal/tts/ttsutils"
	"github.com/spf13/cobra"
)

// ErrUnsupportedTextFile is returned by preview for files that are not text.
var ErrUnsupportedTextFile = errors.New("unsupported text file")

func newPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <script-file>",
		Short: "Show how a script is chunked and how large each markup payload is, without synthesizing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := previewConfig(cmd)
			if err != nil {
				return err
			}

			names, _ := cmd.Flags().GetStringSlice(flagNames)

			return preview(cmd, cfg, args[0], names)
		},
	}

	cmd.Flags().StringSlice(flagNames, nil, "Foreign names to tag for pronunciation")

	return cmd
}

// previewConfig uses built-in defaults unless a config file is given.
func previewConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString(flagConfig)
	if configPath != "" {
		return loadConfig(configPath)
	}

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return cfg, nil
}

func preview(cmd *cobra.Command, cfg *config.Config, path string, names []string) error {
	if !ttsutils.IsValidTextFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedTextFile, ttsutils.GetFileExtension(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	chunker, err := chunk.NewChunker(cfg.TTS.MaxTextBytes)
	if err != nil {
		return err
	}

	builder, err := newBuilder(cfg)
	if err != nil {
		return err
	}

	text := chunk.NormalizeScript(string(data))
	maxWords := int(cfg.Run.TargetMinutes * float64(cfg.Run.WordsPerMinute))

	cmd.Printf("script: %s, %d word(s), limit %d\n",
		ttsutils.FormatFileSize(int64(len(text))), script.WordCount(text), maxWords)

	pieces := chunker.Chunk(text)

	for i, piece := range pieces {
		payloads, buildErr := builder.BuildAll(piece.Text, names)

		sizes := make([]string, len(payloads))
		for j, payload := range payloads {
			sizes[j] = fmt.Sprintf("%d", payload.Size())
		}

		flags := ""
		if piece.Oversized {
			flags = " oversized"
		}

		cmd.Printf("chunk %d: %d bytes%s -> %d payload(s) [%s]\n",
			i+1, len(piece.Text), flags, len(payloads), strings.Join(sizes, " "))

		if buildErr != nil {
			cmd.Printf("  escalated: %v\n", buildErr)
		}
	}

	cmd.Printf("%d chunk(s), markup budget %d bytes\n", len(pieces), builder.Budget())

	return nil
}
