// Package sched runs named jobs on cron expressions. Each job gets its own
// next-tick loop computed with gronx, so a slow job never delays another.
package sched

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adhocore/gronx"
)

type Job struct {
	Name string
	Cron string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	jobs []Job
}

func New() *Scheduler {
	return &Scheduler{}
}

// Add registers a job. The cron expression is validated up front so a bad
// config fails at startup, not at 2am.
func (s *Scheduler) Add(name, cron string, run func(ctx context.Context) error) error {
	if !gronx.IsValid(cron) {
		return fmt.Errorf("sched: invalid cron expression %q for job %s", cron, name)
	}
	s.jobs = append(s.jobs, Job{Name: name, Cron: cron, Run: run})
	return nil
}

// Start launches one loop per job and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.runLoop(ctx, j)
		}(j)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, j Job) {
	for {
		next, err := gronx.NextTickAfter(j.Cron, time.Now(), false)
		if err != nil {
			log.Printf("sched: %s: next tick: %v", j.Name, err)
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-time.After(time.Until(next)):
			start := time.Now()
			if err := j.Run(ctx); err != nil {
				log.Printf("sched: %s failed cost=%s err=%v", j.Name, time.Since(start), err)
			} else {
				log.Printf("sched: %s done cost=%s", j.Name, time.Since(start))
			}
		case <-ctx.Done():
			return
		}
	}
}
