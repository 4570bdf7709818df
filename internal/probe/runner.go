package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/nbapicks/internal/adapters/worker"
	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/pkg/logger"
)

// Run probes every date in the configured range and verifies the output.
// Reports are returned in date order.
func Run(ctx context.Context, config *Config) (*Stats, []DayReport, error) {
	log := logger.Get().Named("probe")
	stats := &Stats{StartTime: time.Now()}

	dates := config.Dates()
	log.Info(ctx, "starting picks probe",
		logger.String("baseURL", config.BaseURL),
		logger.String("from", config.From.ISO()),
		logger.String("to", config.To.ISO()),
		logger.Int("dates", len(dates)),
		logger.Int("perType", config.PerType),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.UserID, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, nil, err
	}

	// Step 2: Probe all dates concurrently
	pool := worker.NewPool(config.Workers, worker.WithName("probe"), worker.WithLogger(log))
	results := worker.Map(ctx, pool, dates, client.Recommendations)

	// Step 3: Verify results
	reports := make([]DayReport, len(dates))
	var failed []error
	for i, r := range results {
		rep := DayReport{Date: dates[i], Result: r.Value, Err: r.Err}
		stats.DatesProbed++
		if r.Err != nil {
			stats.DatesFailed++
			failed = append(failed, fmt.Errorf("%s: %w", dates[i].ISO(), r.Err))
			log.Warn(ctx, "date failed", logger.String("date", dates[i].ISO()), logger.Error(r.Err))
			reports[i] = rep
			continue
		}
		rep.Violations = Verify(r.Value, config.PerType)
		stats.Violations += Hard(rep.Violations)
		stats.GamesSeen += r.Value.TotalGames
		stats.PicksSeen += len(r.Value.Picks)
		if r.Value.Note != "" {
			stats.DatesWithNote++
		}
		logDay(ctx, log, &rep, config.Verbose)
		reports[i] = rep
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	var errs []error
	if stats.Violations > 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrViolations, stats.Violations))
	}
	errs = append(errs, failed...)
	return stats, reports, errors.Join(errs...)
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()

	// The health route serves prometheus text; any 200 is healthy.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func logDay(ctx context.Context, log logger.Logger, rep *DayReport, verbose bool) {
	rec := rep.Result
	fields := []logger.Field{
		logger.String("date", rep.Date.ISO()),
		logger.String("resolved", rec.Date.ISO()),
		logger.Int("games", rec.TotalGames),
		logger.Int("candidates", rec.CandidateCount),
		logger.Int("picks", len(rec.Picks)),
		logger.String("oddsSource", rec.Meta.OddsSource),
	}
	if rec.Note != "" {
		fields = append(fields, logger.String("note", rec.Note))
	}
	log.Info(ctx, "date probed", fields...)

	for _, v := range rep.Violations {
		if v.Soft {
			log.Warn(ctx, "soft violation", logger.String("date", rep.Date.ISO()), logger.String("rule", v.Rule), logger.String("detail", v.Detail))
			continue
		}
		log.Error(ctx, "violation", logger.String("date", rep.Date.ISO()), logger.String("rule", v.Rule), logger.String("detail", v.Detail))
	}

	if !verbose {
		return
	}
	for _, p := range rec.Picks {
		log.Info(ctx, "pick",
			logger.String("type", string(p.Type)),
			logger.String("game", p.Away+" @ "+p.Home),
			logger.String("side", string(p.Side)),
			logger.Int("confidence", p.Confidence),
			logger.Float64("edgePercent", p.EdgePercent),
			logger.String("lineSource", string(p.LineSource)))
	}
}

// displayFinalStats prints the final probe statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var okRate float64
	if stats.DatesProbed > 0 {
		okRate = float64(stats.DatesProbed-stats.DatesFailed) / float64(stats.DatesProbed) * PercentageMultiplier
	}

	log.Info(ctx, "final statistics",
		logger.Int("datesProbed", stats.DatesProbed),
		logger.Int("datesFailed", stats.DatesFailed),
		logger.Int("datesWithNote", stats.DatesWithNote),
		logger.Int("gamesSeen", stats.GamesSeen),
		logger.Int("picksSeen", stats.PicksSeen),
		logger.Int("violations", stats.Violations),
		logger.Duration("duration", stats.Duration),
		logger.Float64("okRate", okRate))
}

// ParseRange parses the from/to flags. An empty to means a single day.
func ParseRange(from, to string) (calendar.Date, calendar.Date, error) {
	start, err := calendar.Parse(from)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	if to == "" {
		return start, start, nil
	}
	end, err := calendar.Parse(to)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	return start, end, nil
}
