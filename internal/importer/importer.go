// Package importer pulls the athletics calendar feed into the stored sport
// schedules.
package importer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"athletics/internal/apperr"
	"athletics/internal/config"
	"athletics/internal/ics"
	appLog "athletics/internal/log"
	"athletics/internal/model"
	"athletics/internal/schedule"
)

// ErrNoFeedMessage is returned when neither the request nor the stored
// settings name a feed.
const ErrNoFeedMessage = "No iCal URL configured. Set it in System Admin → Schedule Settings."

// Request is an import call. Empty fields fall back to stored settings.
type Request struct {
	// Sport limits the import to one sport slug.
	Sport    string `json:"sport,omitempty"`
	ICalURL  string `json:"icalUrl,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Options is a Request with every fallback applied.
type Options struct {
	Sport    string
	ICalURL  string
	Timezone string
}

// ResolveOptions applies request → stored settings → fallbackTZ →
// config.DefaultTimezone precedence. Only a missing feed URL is an error.
func ResolveOptions(req Request, settings model.Settings, fallbackTZ string) (Options, error) {
	opts := Options{
		Sport:    strings.TrimSpace(req.Sport),
		ICalURL:  firstNonEmpty(req.ICalURL, settings.ICalURL),
		Timezone: firstNonEmpty(req.Timezone, settings.Timezone, fallbackTZ, config.DefaultTimezone),
	}
	if opts.ICalURL == "" {
		return opts, apperr.New(apperr.ErrConfig, ErrNoFeedMessage)
	}
	return opts, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Result is reported back to the operator after a successful import.
type Result struct {
	Success      bool                  `json:"success"`
	RunID        string                `json:"runId"`
	Imported     []schedule.SportCount `json:"imported"`
	Unrecognized int                   `json:"unrecognized"`
	Skipped      int                   `json:"skipped"`
	Total        int                   `json:"total"`
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (ics.FetchResult, error)
}

type SettingsSource interface {
	Get() (model.Settings, error)
}

type ScheduleWriter interface {
	ReplaceSchedules(schedules map[string][]model.GameEntry) error
}

// Importer runs imports. It is safe for concurrent use as long as its
// dependencies are; concurrent runs touching the same sport resolve as last
// write wins.
type Importer struct {
	fetcher   Fetcher
	settings  SettingsSource
	sports    ScheduleWriter
	defaultTZ string
}

// New returns an Importer. defaultTZ is used when neither the request nor
// the stored settings carry a timezone.
func New(fetcher Fetcher, settings SettingsSource, sports ScheduleWriter, defaultTZ string) *Importer {
	return &Importer{
		fetcher:   fetcher,
		settings:  settings,
		sports:    sports,
		defaultTZ: defaultTZ,
	}
}

// Run fetches the feed and replaces the schedule of every sport found in it.
//
// Errors are apperr errors: ErrConfig for a missing feed URL or unknown
// timezone, ErrCommunication for an unreachable feed or non-2xx answer, and
// ErrInternal when the schedules cannot be stored. Individual events never
// fail a run; they are counted.
func (im *Importer) Run(ctx context.Context, req Request) (Result, error) {
	runID := uuid.NewString()
	l := appLog.With("run_id", runID)
	started := time.Now()

	settings, err := im.settings.Get()
	if err != nil {
		// Request fields may still be enough.
		l.Warn("import: failed to read settings, continuing without them", "err", err)
		settings = model.Settings{}
	}

	opts, err := ResolveOptions(req, settings, im.defaultTZ)
	if err != nil {
		return Result{}, err
	}

	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return Result{}, apperr.FromErr(apperr.ErrConfig, "unknown timezone "+opts.Timezone, err, nil)
	}

	l.Info("import start", "sport", opts.Sport, "timezone", opts.Timezone)

	feed, err := im.fetcher.Fetch(ctx, opts.ICalURL)
	if err != nil {
		return Result{}, err
	}

	records := ics.Parse(feed.Body)
	sum := schedule.Aggregate(records, schedule.NewClassifier(loc, opts.Sport))

	if err := im.sports.ReplaceSchedules(sum.Schedules); err != nil {
		return Result{}, apperr.Wrap(err, "failed to save schedules")
	}

	l.Info("import done",
		"sports", len(sum.Imported),
		"total", sum.Total,
		"skipped", sum.Skipped,
		"unrecognized", sum.Unrecognized,
		"from_cache", feed.FromCache,
		"elapsed", time.Since(started),
	)

	return Result{
		Success:      true,
		RunID:        runID,
		Imported:     sum.Imported,
		Unrecognized: sum.Unrecognized,
		Skipped:      sum.Skipped,
		Total:        sum.Total,
	}, nil
}
