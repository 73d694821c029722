package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/resume/export"
	"resume-builder/resume/render"
)

func newExportCmd() *cobra.Command {
	var (
		templateID string
		out        string
		page       string
		scale      float64
		paginate   bool
		chromeBin  string
		controlURL string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export <file.json|->",
		Short: "Export a resume document to PDF with headless Chrome",
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

			capturer := export.NewRodCapturer(export.RodOptions{
				Bin:        chromeBin,
				ControlURL: controlURL,
				Timeout:    timeout,
			})
			defer capturer.Close()

			pipeline := &export.Pipeline{
				Capturer: capturer,
				Page:     export.PageByName(page),
				Scale:    scale,
				Paginate: paginate,
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout+10*time.Second)
			defer cancel()
			res := pipeline.Export(ctx, &r, export.Target{HTML: html, Selector: render.PreviewSelector})
			if !res.Success {
				return errors.New(res.Error)
			}

			dest := out
			if dest == "" {
				dest = res.FileName
			}
			if err := writeOutput(cmd, dest, res.PDF); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d pages)\n", dest, res.Pages)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&templateID, "template", "t", "", "template id (default: the document's templateId, else classic)")
	f.StringVarP(&out, "out", "o", "", "output file (default {name}_{date}.pdf)")
	f.StringVar(&page, "page", "a4", "paper size: a4 or letter")
	f.Float64Var(&scale, "scale", 2, "device scale factor")
	f.BoolVar(&paginate, "paginate", false, "slice tall previews across pages")
	f.StringVar(&chromeBin, "chrome-bin", "", "chrome binary (default: launcher download)")
	f.StringVar(&controlURL, "control-url", "", "existing DevTools websocket")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "capture timeout")
	return cmd
}
