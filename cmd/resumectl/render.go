package main

import (
	"github.com/spf13/cobra"

	"resume-builder/resume/render"
)

func newRenderCmd() *cobra.Command {
	var (
		templateID string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "render <file.json|->",
		Short: "Render a resume document to standalone HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := readResume(cmd, args[0])
			if err != nil {
				return err
			}
			html, err := render.HTML(pickTemplate(templateID, r.TemplateID), r)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, []byte(html))
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "template id (default: the document's templateId, else classic)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func pickTemplate(flag, stored string) string {
	switch {
	case flag != "":
		return flag
	case render.Has(stored):
		return stored
	default:
		return "classic"
	}
}
