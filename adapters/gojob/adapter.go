package gojob

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-redeem/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

const (
	JobIDIssue      = core.JobIDIssue
	JobIDRedeem     = core.JobIDRedeem
	JobIDMintSupply = core.JobIDMintSupply
)

// IsInstructionJob reports whether id names one of the ledger instruction jobs.
func IsInstructionJob(id string) bool {
	switch strings.TrimSpace(id) {
	case JobIDIssue, JobIDRedeem, JobIDMintSupply:
		return true
	}
	return false
}

// DeadLetterPolicy turns every nack into a dead letter. Ledger instructions
// are never requeued, so a failed issue or redeem is not executed twice.
type DeadLetterPolicy struct {
	DefaultReason string
}

func (p DeadLetterPolicy) Normalize(opts core.JobNackOptions) core.JobNackOptions {
	reason := strings.TrimSpace(opts.Reason)
	if reason == "" {
		reason = strings.TrimSpace(p.DefaultReason)
	}
	if reason == "" {
		reason = "instruction failed"
	}
	return core.JobNackOptions{Reason: reason, DeadLetter: true}
}

func (p DeadLetterPolicy) queueNack(opts core.JobNackOptions) queue.NackOptions {
	normalized := p.Normalize(opts)
	return queue.NackOptions{Reason: normalized.Reason, DeadLetter: normalized.DeadLetter}
}

// ToExecutionMessage maps an instruction onto a go-job message. Instructions
// run in-process, so no script path is carried.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

// FromExecutionMessage reads an instruction back out of a go-job message.
func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

// EnqueuerAdapter publishes ledger instructions onto a go-job queue. Any other
// job id is refused before it reaches the queue.
type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	switch {
	case a == nil || a.enqueuer == nil:
		return fmt.Errorf("gojob: enqueuer is not configured")
	case msg == nil:
		return fmt.Errorf("gojob: execution message is required")
	case !IsInstructionJob(msg.JobID):
		return fmt.Errorf("gojob: %q is not a ledger instruction", msg.JobID)
	}
	return a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
}

// DeliveryAdapter exposes one queued instruction. Nacks always dead-letter.
type DeliveryAdapter struct {
	delivery queue.Delivery
	policy   DeadLetterPolicy
}

func NewDeliveryAdapter(delivery queue.Delivery, policy DeadLetterPolicy) *DeliveryAdapter {
	return &DeliveryAdapter{delivery: delivery, policy: policy}
}

func (d *DeliveryAdapter) Message() *core.JobExecutionMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return FromExecutionMessage(d.delivery.Message())
}

func (d *DeliveryAdapter) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *DeliveryAdapter) Nack(ctx context.Context, opts core.JobNackOptions) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Nack(ctx, d.policy.queueNack(opts))
}

type DequeuerAdapter struct {
	dequeuer queue.Dequeuer
	policy   DeadLetterPolicy
}

func NewDequeuerAdapter(dequeuer queue.Dequeuer, policy DeadLetterPolicy) *DequeuerAdapter {
	return &DequeuerAdapter{dequeuer: dequeuer, policy: policy}
}

// Dequeue returns nil, nil when the queue is empty.
func (a *DequeuerAdapter) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if a == nil || a.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := a.dequeuer.Dequeue(ctx)
	if err != nil || delivery == nil {
		return nil, err
	}
	return NewDeliveryAdapter(delivery, a.policy), nil
}

// NewQueueDispatcher wires a go-job queue pair to the redeem service: the
// publisher enqueues instructions and the dispatcher drains them.
func NewQueueDispatcher(
	service core.RedeemService,
	enqueuer queue.Enqueuer,
	dequeuer queue.Dequeuer,
	policy DeadLetterPolicy,
) (*core.InstructionPublisher, *core.InstructionDispatcher, error) {
	publisher, err := core.NewInstructionPublisher(NewEnqueuerAdapter(enqueuer))
	if err != nil {
		return nil, nil, err
	}
	dispatcher, err := core.NewInstructionDispatcher(service, NewDequeuerAdapter(dequeuer, policy))
	if err != nil {
		return nil, nil, err
	}
	return publisher, dispatcher, nil
}

// WorkerHookAdapter forwards go-job worker events to a redeem job hook.
type WorkerHookAdapter struct {
	hook core.JobWorkerHook
}

func NewWorkerHookAdapter(hook core.JobWorkerHook) *WorkerHookAdapter {
	return &WorkerHookAdapter{hook: hook}
}

func (a *WorkerHookAdapter) OnStart(ctx context.Context, event worker.Event) {
	a.forward(ctx, event, core.JobWorkerHook.OnStart)
}

func (a *WorkerHookAdapter) OnSuccess(ctx context.Context, event worker.Event) {
	a.forward(ctx, event, core.JobWorkerHook.OnSuccess)
}

func (a *WorkerHookAdapter) OnFailure(ctx context.Context, event worker.Event) {
	a.forward(ctx, event, core.JobWorkerHook.OnFailure)
}

func (a *WorkerHookAdapter) OnRetry(ctx context.Context, event worker.Event) {
	a.forward(ctx, event, core.JobWorkerHook.OnRetry)
}

func (a *WorkerHookAdapter) forward(
	ctx context.Context,
	event worker.Event,
	phase func(core.JobWorkerHook, context.Context, core.JobWorkerEvent),
) {
	if a == nil || a.hook == nil {
		return
	}
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	phase(a.hook, ctx, core.JobWorkerEvent{
		Message:   FromExecutionMessage(message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	})
}

func cloneParameters(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	return maps.Clone(in)
}

var (
	_ core.JobEnqueuer = (*EnqueuerAdapter)(nil)
	_ core.JobDelivery = (*DeliveryAdapter)(nil)
	_ core.JobDequeuer = (*DequeuerAdapter)(nil)
	_ worker.Hook      = (*WorkerHookAdapter)(nil)
)
