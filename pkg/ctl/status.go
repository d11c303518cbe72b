package ctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nodedash/pkg/models"
	"nodedash/pkg/status"
)

// ErrNodeNotOK is returned when the reported status is error or unknown.
var ErrNodeNotOK = errors.New("node is not ok")

const placeholder = "—"

type statusOptions struct {
	query  status.Query
	asJSON bool
}

func newStatusCommand(root *rootOptions) *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the derived status of a node container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := root.client()
			if err != nil {
				return err
			}

			report, err := api.Status(cmd.Context(), opts.query)
			if err != nil {
				return fmt.Errorf("fetch status: %w", err)
			}

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			if !report.Status.OK() {
				return fmt.Errorf("%w: %s (%s)", ErrNodeNotOK, report.Status, report.Rule)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.query.Container, "container", "", "container name (dashboard default when empty)")
	flags.StringVar(&opts.query.Since, "since", "", "log window, e.g. 5m or 1h")
	flags.StringVar(&opts.query.Tail, "tail", "", "maximum log lines")
	flags.BoolVar(&opts.asJSON, "json", false, "print the raw report as JSON")

	return cmd
}

func printReport(w io.Writer, r *models.StatusReport) {
	fmt.Fprintln(w, titleStyle.Render(r.Container)+"  "+statusStyle(r.Status).Render(r.Status.Label())+dimStyle.Render("  "+r.Rule))

	row := func(key, value string) {
		fmt.Fprintln(w, keyStyle.Render(key)+valueStyle.Render(value))
	}

	row("Readiness", probeSummary(r.Readiness))
	row("Liveness", probeSummary(r.Liveness))
	row("Peers", countOrPlaceholder(r.Metrics.Peers))
	row("Height", countOrPlaceholder(r.Metrics.Height))
	if r.Metrics.Hashrate != nil {
		row("Hashrate", humanize.SIWithDigits(*r.Metrics.Hashrate, 2, "H/s"))
	} else {
		row("Hashrate", placeholder)
	}
	if r.Metrics.LastLogAt != nil {
		row("Last log", humanize.RelTime(*r.Metrics.LastLogAt, r.RetrievedAt, "ago", "from now"))
	} else {
		row("Last log", placeholder)
	}
	row("Activity", fmt.Sprintf("mined %d · processed %d · sealed %d · errors %d",
		r.Activity.Mined, r.Activity.Processed, r.Activity.Sealed, r.Activity.Errors))
	row("Sync", r.SyncHint.Label())
	row("Window", fmt.Sprintf("%s / %d lines (%d read)", r.Since, r.Tail, r.LogLines))

	for _, d := range r.Diagnostics {
		fmt.Fprintln(w, dimStyle.Render("  ! "+d))
	}
}

func probeSummary(p models.ProbeResult) string {
	switch {
	case p.Reachable && p.HTTPStatus != nil:
		return strconv.Itoa(*p.HTTPStatus)
	case p.Reachable:
		return "reachable"
	case p.Error != "":
		return "unreachable (" + p.Error + ")"
	default:
		return "unreachable"
	}
}

func countOrPlaceholder(v *int64) string {
	if v == nil {
		return placeholder
	}
	return humanize.Comma(*v)
}
