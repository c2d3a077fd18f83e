package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"

	"feedrelay/app/feed"
)

// FeedProcessor runs one poll cycle for one feed. Implementations handle
// their own errors; the scheduler only isolates and joins them.
type FeedProcessor interface {
	Run(ctx context.Context, def *feed.Definition)
}

// cadenceGroup holds the feeds sharing one cadence expression. Grouping is
// by exact expression string, not semantic equivalence.
type cadenceGroup struct {
	expression string
	feeds      []*feed.Definition
	running    atomic.Bool
}

// Scheduler registers one cron entry per distinct cadence expression and
// processes every feed in a group concurrently on each firing.
type Scheduler struct {
	cron      *cron.Cron
	processor FeedProcessor
	groups    []*cadenceGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(processor FeedProcessor, defs []*feed.Definition) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	grouped := lo.GroupBy(defs, func(d *feed.Definition) string { return d.Cadence })

	groups := make([]*cadenceGroup, 0, len(grouped))
	for expression, feeds := range grouped {
		groups = append(groups, &cadenceGroup{expression: expression, feeds: feeds})
	}

	return &Scheduler{
		cron:      cron.New(),
		processor: processor,
		groups:    groups,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers all cadence groups and starts the timers. An invalid
// cadence expression is a configuration error and fails startup.
func (s *Scheduler) Start() error {
	for _, group := range s.groups {
		g := group
		if _, err := s.cron.AddFunc(g.expression, func() { s.runGroup(g) }); err != nil {
			return fmt.Errorf("invalid cadence expression %q: %w", g.expression, err)
		}
	}

	s.cron.Start()
	slog.Info("Scheduler started", "groups", len(s.groups), "feeds", s.FeedCount())
	return nil
}

// Stop cancels in-flight feed processing and waits for running ticks to
// settle.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) GroupCount() int {
	return len(s.groups)
}

func (s *Scheduler) FeedCount() int {
	count := 0
	for _, group := range s.groups {
		count += len(group.feeds)
	}
	return count
}

// runGroup processes every feed in the group concurrently and waits for all
// of them to settle. If the previous firing of this group is still running,
// the tick is skipped to bound resource growth; other cadence groups are
// unaffected.
func (s *Scheduler) runGroup(g *cadenceGroup) {
	if !g.running.CompareAndSwap(false, true) {
		slog.Debug("Previous tick still running, skipping", "cadence", g.expression)
		return
	}
	defer g.running.Store(false)

	slog.Debug("Running cadence group", "cadence", g.expression, "feeds", len(g.feeds))

	var wg sync.WaitGroup
	for _, def := range g.feeds {
		wg.Add(1)
		go func(def *feed.Definition) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Feed processing panicked", "feed", def.Name, "panic", r)
				}
			}()
			s.processor.Run(s.ctx, def)
		}(def)
	}
	wg.Wait()
}
