package events

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// CronRunner schedules every enabled cron trigger on one shared
// robfig/cron.Cron instance, validating each 5-field expression at
// registration time as the contract requires.
type CronRunner struct {
	registry *Registry
	cron     *cron.Cron
}

// NewCronRunner builds an idle scheduler; call Start to add entries and
// begin firing.
func NewCronRunner(registry *Registry) *CronRunner {
	return &CronRunner{registry: registry, cron: cron.New()}
}

// Start schedules every enabled cron trigger and begins the scheduler loop.
func (r *CronRunner) Start() error {
	for _, t := range r.registry.All() {
		if t.Type != KindCron || !t.Enabled {
			continue
		}
		if err := r.schedule(t); err != nil {
			return err
		}
	}
	r.cron.Start()
	return nil
}

func (r *CronRunner) schedule(t *Trigger) error {
	expr, _ := t.Config["expression"].(string)
	if expr == "" {
		return fmt.Errorf("cron trigger %s: missing expression", t.ID)
	}
	id := t.ID
	_, err := r.cron.AddFunc(expr, func() {
		_ = r.registry.Fire(id, nil)
	})
	if err != nil {
		return fmt.Errorf("cron trigger %s: invalid expression %q: %w", t.ID, expr, err)
	}
	return nil
}

// Stop ends the scheduler, waiting for any running job to finish.
func (r *CronRunner) Stop() {
	<-r.cron.Stop().Done()
}
