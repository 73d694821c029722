package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "normalize <file.json|->",
		Short: "Overlay a stored document onto the default resume and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readResume(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(r.Document(), "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, append(data, '\n'))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
