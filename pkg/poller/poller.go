// Package poller pkg/poller/poller.go schedules background network scans
// and traffic samples on cron cadences. Both jobs are optional; an empty
// spec disables the job and the service degrades to request-driven use.
package poller

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/registry"
	"github.com/carverauto/lanwatch/pkg/traffic"
)

// Config holds the cron specs and the per-run scan budget.
type Config struct {
	ScanSpec    string
	SampleSpec  string
	ScanTimeout time.Duration
}

// Poller drives periodic scans and samples.
type Poller struct {
	cron    *cron.Cron
	config  Config
	scan    ScanRunner
	sampler SampleRunner
}

// ScanRunner is the discovery pipeline the poller triggers.
type ScanRunner interface {
	Run(ctx context.Context) ([]models.Device, error)
}

// SampleRunner is the traffic sampler the poller triggers.
type SampleRunner interface {
	Sample() (*traffic.Reading, error)
}

// New creates a Poller; jobs are registered on Start.
func New(config Config, scan ScanRunner, sampler SampleRunner) *Poller {
	return &Poller{
		cron:    cron.New(),
		config:  config,
		scan:    scan,
		sampler: sampler,
	}
}

// Start registers the configured jobs and starts the scheduler. It blocks
// until ctx is canceled, matching the lifecycle Service contract.
func (p *Poller) Start(ctx context.Context) error {
	if p.config.ScanSpec != "" {
		if _, err := p.cron.AddFunc(p.config.ScanSpec, func() { p.runScan(ctx) }); err != nil {
			return fmt.Errorf("invalid scan cron spec %q: %w", p.config.ScanSpec, err)
		}

		log.Printf("poller: network scan scheduled at %q", p.config.ScanSpec)
	}

	if p.config.SampleSpec != "" {
		if _, err := p.cron.AddFunc(p.config.SampleSpec, p.runSample); err != nil {
			return fmt.Errorf("invalid sample cron spec %q: %w", p.config.SampleSpec, err)
		}

		log.Printf("poller: traffic sample scheduled at %q", p.config.SampleSpec)
	}

	p.cron.Start()

	<-ctx.Done()

	return nil
}

// Stop halts the scheduler, waiting for any running job.
func (p *Poller) Stop(ctx context.Context) error {
	select {
	case <-p.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) runScan(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, p.config.ScanTimeout)
	defer cancel()

	devices, err := p.scan.Run(scanCtx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("poller: scheduled scan failed: %v", err)
		}

		return
	}

	log.Printf("poller: scheduled scan found %d devices", len(devices))
}

func (p *Poller) runSample() {
	if _, err := p.sampler.Sample(); err != nil {
		log.Printf("poller: scheduled traffic sample failed: %v", err)
	}
}

var _ ScanRunner = (*registry.NetworkScan)(nil)
var _ SampleRunner = (*traffic.Sampler)(nil)
