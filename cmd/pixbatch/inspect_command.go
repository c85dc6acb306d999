package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pixbatch/internal/api"
	"pixbatch/internal/config"
	"pixbatch/internal/convert"
	"pixbatch/internal/failure"
	"pixbatch/internal/ingest"
	"pixbatch/internal/notifications"
	"pixbatch/internal/validate"
)

const (
	inspectOK       = "ok"
	inspectWarning  = "warning"
	inspectRejected = "rejected"
	inspectBroken   = "unreadable"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <file|dir>...",
		Short: "Report how each input would be admitted, without converting",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			descriptors, err := ingest.FromPaths(args)
			if err != nil {
				return err
			}
			results := inspectDescriptors(cfg, descriptors)
			if jsonOutput {
				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{
					r.Name,
					r.MediaType,
					humanBytes(r.Size),
					dimensions(r.Width, r.Height),
					r.Status,
					r.Message,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Type", "Size", "Dimensions", "Status", "Message"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintln(out, strconv.Itoa(len(results))+" file(s) inspected")
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

// inspectDescriptors mirrors batch admission: type and size first, then
// header dimensions.
func inspectDescriptors(cfg *config.Config, descriptors []ingest.Descriptor) []api.Inspection {
	validator := validate.New(validate.LimitsFromConfig(cfg))
	results := make([]api.Inspection, 0, len(descriptors))
	for _, d := range descriptors {
		result := api.Inspection{Name: d.Name, MediaType: d.MediaType, Size: d.Size, Status: inspectOK}
		valid, err := validator.Validate(d)
		if err != nil {
			results = append(results, rejectedInspection(result, err))
			continue
		}
		result.Name = valid.Name
		data, err := valid.ReadAll()
		if err != nil {
			results = append(results, rejectedInspection(result, err))
			continue
		}
		w, h, _, err := convert.Probe(data)
		if err != nil {
			result.Status = inspectBroken
			result.Message = err.Error()
			results = append(results, result)
			continue
		}
		result.Width, result.Height = w, h
		report, err := validator.ValidateDimensions(w, h)
		if err != nil {
			results = append(results, rejectedInspection(result, err))
			continue
		}
		if report.HasWarning() {
			result.Status = inspectWarning
			result.MessageKey = report.WarningKey
			result.Message = notifications.Message(report.WarningKey, notifications.Payload{"name": result.Name})
		}
		results = append(results, result)
	}
	return results
}

func rejectedInspection(result api.Inspection, err error) api.Inspection {
	result.Status = inspectRejected
	result.MessageKey = failure.MessageKey(err, "")
	if result.MessageKey != "" {
		result.Message = notifications.Message(result.MessageKey, notifications.Payload{"name": result.Name})
	} else {
		result.Message = err.Error()
	}
	return result
}
