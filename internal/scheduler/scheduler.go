// Package scheduler runs periodic back-office jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Forecaster computes the current forecast
type Forecaster interface {
	Forecast(ctx context.Context) (models.Forecast, error)
}

// ReportMailer delivers the forecast report
type ReportMailer interface {
	SendForecastReport(to string, f models.Forecast, generatedAt time.Time) error
}

// ForecastReport emails the forecast to a fixed recipient
type ForecastReport struct {
	forecaster Forecaster
	mailer     ReportMailer
	recipient  string
	timeout    time.Duration
	log        *logrus.Logger
	now        func() time.Time
}

// NewForecastReport creates the report job
func NewForecastReport(forecaster Forecaster, mailer ReportMailer, recipient string, log *logrus.Logger) *ForecastReport {
	return &ForecastReport{
		forecaster: forecaster,
		mailer:     mailer,
		recipient:  recipient,
		timeout:    time.Minute,
		log:        log,
		now:        time.Now,
	}
}

// Run computes and sends one report
func (j *ForecastReport) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	f, err := j.forecaster.Forecast(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}
	if err := j.mailer.SendForecastReport(j.recipient, f, j.now()); err != nil {
		return err
	}
	j.log.Infof("Forecast report sent to %s (total %s %s)", j.recipient, f.Total.StringFixed(2), f.Currency)
	return nil
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New creates a scheduler using the local time zone
func New(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log)))),
		log:  log,
	}
}

// AddForecastReport schedules the report with a standard five-field spec
func (s *Scheduler) AddForecastReport(spec string, job *ForecastReport) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			s.log.Errorf("Forecast report failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Scheduler started with %d job(s)", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
