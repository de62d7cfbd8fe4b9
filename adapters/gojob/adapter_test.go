package gojob

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-redeem/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

func TestMessageMappingRoundTrip(t *testing.T) {
	original := core.NewRedeemJob(core.RedeemRequest{
		Caller:      "bob",
		Owner:       "alice",
		InstanceKey: "inst_1",
		Quantity:    3,
	}, "idem-1")
	original.DedupPolicy = "drop"

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != JobIDRedeem {
		t.Fatalf("expected job id %q, got %q", JobIDRedeem, roundTrip.JobID)
	}
	if roundTrip.IdempotencyKey != "idem-1" {
		t.Fatalf("expected idempotency key idem-1, got %q", roundTrip.IdempotencyKey)
	}
	if roundTrip.DedupPolicy != "drop" {
		t.Fatalf("expected dedup policy drop, got %q", roundTrip.DedupPolicy)
	}
	if roundTrip.Parameters["quantity"] != "3" || roundTrip.Parameters["instance_key"] != "inst_1" {
		t.Fatalf("expected parameters to survive mapping, got %#v", roundTrip.Parameters)
	}
}

func TestEnqueueAndDequeueAdapters(t *testing.T) {
	ctx := context.Background()
	q := &memoryQueue{}
	enqueueAdapter := NewEnqueuerAdapter(q)

	msg := core.NewMintSupplyJob(core.MintSupplyRequest{Caller: "alice", Owner: "alice", Amount: 10000}, "idem-mint")
	if err := enqueueAdapter.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := enqueueAdapter.Enqueue(ctx, nil); err == nil {
		t.Fatalf("expected nil message to be rejected")
	}

	dequeueAdapter := NewDequeuerAdapter(q, DeadLetterPolicy{})
	delivery, err := dequeueAdapter.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	got := delivery.Message()
	if got == nil || got.JobID != JobIDMintSupply {
		t.Fatalf("expected mapped core message, got %#v", got)
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if len(q.acked) != 1 {
		t.Fatalf("expected ack on underlying delivery")
	}

	empty, err := dequeueAdapter.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue empty: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected nil delivery from empty queue")
	}
}

func TestDeadLetterPolicy_NeverRequeues(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &memoryDelivery{msg: &job.ExecutionMessage{JobID: JobIDIssue}}
	adapter := NewDeliveryAdapter(rawDelivery, DeadLetterPolicy{DefaultReason: "rejected"})

	if err := adapter.Nack(ctx, core.JobNackOptions{
		Delay:   30 * time.Second,
		Requeue: true,
	}); err != nil {
		t.Fatalf("nack: %v", err)
	}
	if rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected requeue to be suppressed")
	}
	if !rawDelivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter")
	}
	if rawDelivery.nackOpts.Delay != 0 {
		t.Fatalf("expected no delay, got %s", rawDelivery.nackOpts.Delay)
	}
	if rawDelivery.nackOpts.Reason != "rejected" {
		t.Fatalf("expected default reason, got %q", rawDelivery.nackOpts.Reason)
	}

	normalized := (DeadLetterPolicy{}).Normalize(core.JobNackOptions{Reason: "  REDEEM_UNKNOWN_ITEM_TYPE: no match "})
	if normalized.Reason != "REDEEM_UNKNOWN_ITEM_TYPE: no match" {
		t.Fatalf("expected trimmed reason, got %q", normalized.Reason)
	}
}

func TestQueueDispatcher_AcksSuccessAndDeadLettersFailures(t *testing.T) {
	ctx := context.Background()
	svc, err := core.NewService(core.DefaultConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.CreateCatalog(ctx, core.CreateCatalogRequest{Caller: "alice", Capacity: 2}); err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	if _, err := svc.AddItemType(ctx, core.AddItemTypeRequest{
		Caller: "alice", Owner: "alice", Name: "Can", Symbol: "CAN", URI: "https://x/can.json",
	}); err != nil {
		t.Fatalf("add item type: %v", err)
	}

	q := &memoryQueue{}
	publisher, dispatcher, err := NewQueueDispatcher(svc, q, q, DeadLetterPolicy{})
	if err != nil {
		t.Fatalf("new queue dispatcher: %v", err)
	}

	if _, err := publisher.PublishIssue(ctx, core.IssueRequest{
		Caller: "bob", Owner: "alice", Index: 0, Quantity: 5, InstanceKey: "inst_1",
	}); err != nil {
		t.Fatalf("publish issue: %v", err)
	}
	outcome, err := dispatcher.DispatchNext(ctx)
	if err != nil {
		t.Fatalf("dispatch issue: %v", err)
	}
	if !outcome.Acked || outcome.Err != nil {
		t.Fatalf("expected issue to be acked, got %#v", outcome)
	}

	// The rate was never configured, so the redemption is rejected.
	if _, err := publisher.PublishRedeem(ctx, core.RedeemRequest{
		Caller: "bob", Owner: "alice", InstanceKey: "inst_1", Quantity: 2,
	}); err != nil {
		t.Fatalf("publish redeem: %v", err)
	}
	outcome, err = dispatcher.DispatchNext(ctx)
	if err != nil {
		t.Fatalf("dispatch redeem: %v", err)
	}
	if !outcome.DeadLettered || outcome.Acked {
		t.Fatalf("expected redeem to be dead-lettered, got %#v", outcome)
	}
	if !core.IsKind(outcome.Err, core.ErrorRateNotConfigured) {
		t.Fatalf("expected rate not configured, got %v", outcome.Err)
	}
	if len(q.nacked) != 1 || q.nacked[0].Requeue || !q.nacked[0].DeadLetter {
		t.Fatalf("expected one dead-letter nack without requeue, got %#v", q.nacked)
	}
	if len(q.pending) != 0 {
		t.Fatalf("expected no requeued deliveries, got %d", len(q.pending))
	}
}

func TestWorkerHookAdapterEventMapping(t *testing.T) {
	now := time.Now().UTC().Add(-time.Second)
	coreHook := &capturingHook{}
	adapter := NewWorkerHookAdapter(coreHook)

	evt := worker.Event{
		Message: &job.ExecutionMessage{
			JobID:          JobIDIssue,
			IdempotencyKey: "idem-issue",
		},
		Attempt:   1,
		Delay:     5 * time.Second,
		Err:       errors.New("ledger offline"),
		StartedAt: now,
		Duration:  250 * time.Millisecond,
	}

	adapter.OnFailure(context.Background(), evt)
	if coreHook.last.Message == nil {
		t.Fatalf("expected worker message mapping")
	}
	if coreHook.last.Message.JobID != JobIDIssue {
		t.Fatalf("expected job id mapping, got %q", coreHook.last.Message.JobID)
	}
	if coreHook.last.Attempt != 1 || coreHook.last.Delay != 5*time.Second {
		t.Fatalf("unexpected attempt/delay mapping: %#v", coreHook.last)
	}
	if coreHook.last.Duration != 250*time.Millisecond || coreHook.last.StartedAt.IsZero() {
		t.Fatalf("expected timing mapping")
	}
	if coreHook.last.Err == nil || coreHook.last.Err.Error() != "ledger offline" {
		t.Fatalf("expected error mapping")
	}

	// The logging hook must accept mapped events without a configured logger.
	NewWorkerHookAdapter(core.NewLoggingJobHook(nil)).OnFailure(context.Background(), evt)
}

func TestWorkerHookAdapter_RoutesEachPhase(t *testing.T) {
	ctx := context.Background()
	hook := &capturingHook{}
	adapter := NewWorkerHookAdapter(hook)
	delivery := &memoryDelivery{msg: &job.ExecutionMessage{JobID: JobIDRedeem}}
	evt := worker.Event{Delivery: delivery, Attempt: 2}

	adapter.OnStart(ctx, evt)
	adapter.OnRetry(ctx, evt)
	adapter.OnSuccess(ctx, evt)
	adapter.OnFailure(ctx, evt)

	want := []string{"start", "retry", "success", "failure"}
	if len(hook.phases) != len(want) {
		t.Fatalf("expected phases %v, got %v", want, hook.phases)
	}
	for i := range want {
		if hook.phases[i] != want[i] {
			t.Fatalf("expected phases %v, got %v", want, hook.phases)
		}
	}
	if hook.last.Message == nil || hook.last.Message.JobID != JobIDRedeem {
		t.Fatalf("expected message from delivery, got %#v", hook.last.Message)
	}

	var unset *WorkerHookAdapter
	unset.OnFailure(ctx, evt)
	NewWorkerHookAdapter(nil).OnStart(ctx, evt)
}

func TestEnqueuerAdapter_RejectsNonInstructionJobs(t *testing.T) {
	q := &memoryQueue{}
	adapter := NewEnqueuerAdapter(q)

	err := adapter.Enqueue(context.Background(), &core.JobExecutionMessage{JobID: "services.refresh"})
	if err == nil {
		t.Fatalf("expected unknown job to be rejected")
	}
	if len(q.pending) != 0 {
		t.Fatalf("expected nothing enqueued, got %d", len(q.pending))
	}
	if !IsInstructionJob(" " + JobIDIssue + " ") {
		t.Fatalf("expected padded issue job id to be recognized")
	}
	if IsInstructionJob("") {
		t.Fatalf("expected empty job id to be rejected")
	}
}

type memoryQueue struct {
	mu      sync.Mutex
	pending []*job.ExecutionMessage
	acked   []*job.ExecutionMessage
	nacked  []queue.NackOptions
}

func (q *memoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, msg)
	return nil
}

func (q *memoryQueue) Dequeue(context.Context) (queue.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return &queueDelivery{queue: q, msg: msg}, nil
}

type queueDelivery struct {
	queue *memoryQueue
	msg   *job.ExecutionMessage
}

func (d *queueDelivery) Message() *job.ExecutionMessage {
	return d.msg
}

func (d *queueDelivery) Ack(context.Context) error {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	d.queue.acked = append(d.queue.acked, d.msg)
	return nil
}

func (d *queueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	d.queue.nacked = append(d.queue.nacked, opts)
	if opts.Requeue {
		d.queue.pending = append(d.queue.pending, d.msg)
	}
	return nil
}

type memoryDelivery struct {
	msg      *job.ExecutionMessage
	nackOpts queue.NackOptions
}

func (s *memoryDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *memoryDelivery) Ack(context.Context) error {
	return nil
}

func (s *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type capturingHook struct {
	last   core.JobWorkerEvent
	phases []string
}

func (h *capturingHook) OnStart(_ context.Context, event core.JobWorkerEvent) {
	h.record("start", event)
}

func (h *capturingHook) OnSuccess(_ context.Context, event core.JobWorkerEvent) {
	h.record("success", event)
}

func (h *capturingHook) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	h.record("retry", event)
}

func (h *capturingHook) OnFailure(_ context.Context, event core.JobWorkerEvent) {
	h.record("failure", event)
}

func (h *capturingHook) record(phase string, event core.JobWorkerEvent) {
	h.phases = append(h.phases, phase)
	h.last = event
}
