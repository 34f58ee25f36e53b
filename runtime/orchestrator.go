// Package runtime owns the live meeting state and the event pipeline around it.
package runtime

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"meet-lab/contract"
	"meet-lab/domain/event"
	"meet-lab/moderation"
	"meet-lab/runtime/workers"
	"strings"
	"sync"
	"time"
)

//go:embed censored/*
var censoredFolder embed.FS

// Orchestrator publishes the domain events of the coordinator to the fanout
// worker and runs the supervised background workers.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	subscriptions  contract.ISubscriptionRegistry
	permanentSinks []contract.EventSink
	workers        []contract.Worker
	queue          *workers.EventQueue
	sinkTimeout    time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	subscriptions contract.ISubscriptionRegistry, bufferSize int, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:           log,
		supervisor:    supervisor,
		subscriptions: subscriptions,
		queue:         workers.NewEventQueue(bufferSize),
		sinkTimeout:   sinkTimeout,
	}
}

// Add registers sinks receiving every event.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// AddWorkers registers workers started with the pipeline.
func (o *Orchestrator) AddWorkers(w ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workers = append(o.workers, w...)
}

// Publish is called under a meeting lock. It only enqueues, so it never blocks
// on the sinks and never drops an event.
func (o *Orchestrator) Publish(evt event.DomainEvent) {
	if backlog, grown := o.queue.Push(evt); grown {
		o.log.Warn("Domain event backlog growing", "backlog", backlog, "meeting_id", evt.MeetingID())
	}
}

// Backlog is the number of events not yet delivered.
func (o *Orchestrator) Backlog() int {
	return o.queue.Len()
}

// Start blocks until the supervised workers have stopped.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	fanout := workers.NewEventFanout(o.log, o.permanentSinks, o.subscriptions, o.queue, o.sinkTimeout)
	o.supervisor.Add(fanout)
	o.supervisor.Add(o.workers...)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	// events published while the workers were stopping
	fanout.Drain()
}

// Stop cancels the workers; the fanout flushes the queued events before returning.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}

// NewCaptionFilter loads the embedded censored lists when moderation is enabled.
// Language detection is always on.
func NewCaptionFilter(log *slog.Logger, moderationEnabled bool, charReplacement rune) (*moderation.CaptionFilter, error) {
	if !moderationEnabled {
		return moderation.NewCaptionFilter(nil, log), nil
	}
	data, err := NewCensoredLoader(censoredFolder).LoadAll("censored")
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]", len(data.Languages), strings.Join(data.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	moderator, err := moderation.NewModerator(data.Words, charReplacement, log)
	if err != nil {
		return nil, err
	}
	return moderation.NewCaptionFilter(moderator, log), nil
}
