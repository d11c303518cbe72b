package server

import (
	"html/template"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"nodedash/pkg/models"
)

const placeholder = "—"

// templateFuncs returns the helpers available to the status page.
// Times are shown in loc.
func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"count":      formatCount,
		"hashrate":   formatHashrate,
		"localTime":  func(t *time.Time) string { return formatLocalTime(t, loc) },
		"ago":        formatAgo,
		"uptime":     formatUptime,
		"probe":      formatProbe,
		"statusTone": statusTone,
		"timePtr":    func(t time.Time) *time.Time { return &t },
	}
}

func formatCount(v *int64) string {
	if v == nil {
		return placeholder
	}
	return humanize.Comma(*v)
}

func formatHashrate(v *float64) string {
	if v == nil {
		return placeholder
	}
	return humanize.SIWithDigits(*v, 2, "H/s")
}

func formatLocalTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}

func formatAgo(t *time.Time, ref time.Time) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return humanize.RelTime(*t, ref, "ago", "from now")
}

// formatUptime renders the time since started as days, hours and minutes.
func formatUptime(started *time.Time, ref time.Time) string {
	if started == nil || started.IsZero() || ref.Before(*started) {
		return placeholder
	}

	duration := ref.Sub(*started)
	const hoursInDay = 24
	const minutesInHour = 60
	days := int(duration.Hours()) / hoursInDay
	hours := int(duration.Hours()) % hoursInDay
	minutes := int(duration.Minutes()) % minutesInHour

	switch {
	case days > 0:
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	case hours > 0:
		return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	default:
		return strconv.Itoa(minutes) + "m"
	}
}

func formatProbe(p models.ProbeResult) string {
	switch {
	case p.Reachable && p.HTTPStatus != nil:
		return strconv.Itoa(*p.HTTPStatus) + " in " + strconv.FormatInt(p.LatencyMS, 10) + "ms"
	case p.Reachable:
		return "reachable, no status"
	case p.Error != "":
		return "unreachable: " + p.Error
	default:
		return "unreachable"
	}
}

// statusTone maps a status to the page's CSS class.
func statusTone(s models.NodeStatus) string {
	switch s {
	case models.StatusHealthy, models.StatusConnected:
		return "ok"
	case models.StatusSyncing:
		return "warn"
	case models.StatusError:
		return "err"
	default:
		return "muted"
	}
}
