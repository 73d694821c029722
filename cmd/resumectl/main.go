// Command resumectl works on resume JSON documents offline: it normalizes
// stored documents, renders them through a template and exports PDFs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/resume/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "resumectl",
		Short:        "Normalize, render and export resume documents",
		SilenceUsage: true,
	}
	root.AddCommand(newNormalizeCmd(), newRenderCmd(), newExportCmd())
	return root
}

// readResume loads a stored document from path ("-" is stdin) and
// normalizes it.
func readResume(cmd *cobra.Command, path string) (model.Resume, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return model.Resume{}, err
		}
		defer f.Close()
		r = f
	}
	var doc map[string]any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Resume{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return model.Normalize(doc), nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
