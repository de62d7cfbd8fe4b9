package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

const (
	JobIDIssue      = "redeem.issue"
	JobIDRedeem     = "redeem.redeem"
	JobIDMintSupply = "redeem.mint_supply"
)

type instructionParams struct {
	Caller      string `mapstructure:"caller"`
	Owner       string `mapstructure:"owner"`
	Index       int    `mapstructure:"index"`
	Quantity    uint64 `mapstructure:"quantity"`
	Amount      uint64 `mapstructure:"amount"`
	InstanceKey string `mapstructure:"instance_key"`
}

// Amounts travel as decimal strings so they survive JSON queues without
// losing precision.
func NewIssueJob(req IssueRequest, idempotencyKey string) *JobExecutionMessage {
	return &JobExecutionMessage{
		JobID: JobIDIssue,
		Parameters: map[string]any{
			"caller":       req.Caller,
			"owner":        req.Owner,
			"index":        req.Index,
			"quantity":     strconv.FormatUint(req.Quantity, 10),
			"instance_key": req.InstanceKey,
		},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

func NewRedeemJob(req RedeemRequest, idempotencyKey string) *JobExecutionMessage {
	return &JobExecutionMessage{
		JobID: JobIDRedeem,
		Parameters: map[string]any{
			"caller":       req.Caller,
			"owner":        req.Owner,
			"instance_key": req.InstanceKey,
			"quantity":     strconv.FormatUint(req.Quantity, 10),
		},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

func NewMintSupplyJob(req MintSupplyRequest, idempotencyKey string) *JobExecutionMessage {
	return &JobExecutionMessage{
		JobID: JobIDMintSupply,
		Parameters: map[string]any{
			"caller": req.Caller,
			"owner":  req.Owner,
			"amount": strconv.FormatUint(req.Amount, 10),
		},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

type DispatchOutcome struct {
	JobID        string
	Result       any
	Acked        bool
	DeadLettered bool
	Err          error
}

// InstructionDispatcher executes queued ledger instructions. Deliveries are
// acked on success and dead-lettered on any failure; nothing is requeued.
type InstructionDispatcher struct {
	service  RedeemService
	dequeuer JobDequeuer
}

func NewInstructionDispatcher(service RedeemService, dequeuer JobDequeuer) (*InstructionDispatcher, error) {
	if service == nil {
		return nil, fmt.Errorf("core: redeem service is required")
	}
	if dequeuer == nil {
		return nil, fmt.Errorf("core: job dequeuer is required")
	}
	return &InstructionDispatcher{service: service, dequeuer: dequeuer}, nil
}

func (d *InstructionDispatcher) DispatchNext(ctx context.Context) (DispatchOutcome, error) {
	if d == nil || d.dequeuer == nil {
		return DispatchOutcome{}, fmt.Errorf("core: instruction dispatcher is not configured")
	}
	delivery, err := d.dequeuer.Dequeue(ctx)
	if err != nil {
		return DispatchOutcome{}, err
	}
	if delivery == nil {
		return DispatchOutcome{}, nil
	}

	msg := delivery.Message()
	outcome := DispatchOutcome{}
	if msg != nil {
		outcome.JobID = msg.JobID
	}
	outcome.Result, outcome.Err = d.Execute(ctx, msg)
	if outcome.Err == nil {
		if ackErr := delivery.Ack(ctx); ackErr != nil {
			return outcome, ackErr
		}
		outcome.Acked = true
		return outcome, nil
	}

	reason := outcome.Err.Error()
	if code := KindOf(outcome.Err); code != "" {
		reason = code + ": " + reason
	}
	if nackErr := delivery.Nack(ctx, JobNackOptions{DeadLetter: true, Reason: reason}); nackErr != nil {
		return outcome, nackErr
	}
	outcome.DeadLettered = true
	return outcome, nil
}

func (d *InstructionDispatcher) Execute(ctx context.Context, msg *JobExecutionMessage) (any, error) {
	if d == nil || d.service == nil {
		return nil, fmt.Errorf("core: instruction dispatcher is not configured")
	}
	if msg == nil {
		return nil, NewRedeemError(ErrorBadInput, "core: job message is required", nil)
	}
	var params instructionParams
	if err := mapstructure.WeakDecode(msg.Parameters, &params); err != nil {
		return nil, NewRedeemError(ErrorBadInput, fmt.Sprintf("core: invalid job parameters: %v", err),
			map[string]any{"job_id": msg.JobID},
		)
	}

	switch strings.TrimSpace(msg.JobID) {
	case JobIDIssue:
		return d.service.Issue(ctx, IssueRequest{
			Caller:      params.Caller,
			Owner:       params.Owner,
			Index:       params.Index,
			Quantity:    params.Quantity,
			InstanceKey: params.InstanceKey,
		})
	case JobIDRedeem:
		return d.service.Redeem(ctx, RedeemRequest{
			Caller:      params.Caller,
			Owner:       params.Owner,
			InstanceKey: params.InstanceKey,
			Quantity:    params.Quantity,
		})
	case JobIDMintSupply:
		return d.service.MintSupply(ctx, MintSupplyRequest{
			Caller: params.Caller,
			Owner:  params.Owner,
			Amount: params.Amount,
		})
	default:
		return nil, NewRedeemError(ErrorBadInput, fmt.Sprintf("core: unsupported job %q", msg.JobID),
			map[string]any{"job_id": msg.JobID},
		)
	}
}

// InstructionPublisher queues ledger instructions for a dispatcher to execute
// later. It only checks that principals and keys are present; domain rules run
// in the engine when the instruction executes, so errors keep the engine's
// order.
type InstructionPublisher struct {
	enqueuer JobEnqueuer
	keys     func() string
}

func NewInstructionPublisher(enqueuer JobEnqueuer) (*InstructionPublisher, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("core: job enqueuer is required")
	}
	return &InstructionPublisher{enqueuer: enqueuer, keys: uuid.NewString}, nil
}

func (p *InstructionPublisher) PublishIssue(ctx context.Context, req IssueRequest) (string, error) {
	if err := requirePrincipals(req.Caller, req.Owner); err != nil {
		return "", err
	}
	return p.publish(ctx, func(key string) *JobExecutionMessage { return NewIssueJob(req, key) })
}

func (p *InstructionPublisher) PublishRedeem(ctx context.Context, req RedeemRequest) (string, error) {
	if err := requirePrincipals(req.Caller, req.Owner); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.InstanceKey) == "" {
		return "", NewRedeemError(ErrorBadInput, "core: instance key is required", nil)
	}
	return p.publish(ctx, func(key string) *JobExecutionMessage { return NewRedeemJob(req, key) })
}

func (p *InstructionPublisher) PublishMintSupply(ctx context.Context, req MintSupplyRequest) (string, error) {
	if err := requirePrincipals(req.Caller, req.Owner); err != nil {
		return "", err
	}
	return p.publish(ctx, func(key string) *JobExecutionMessage { return NewMintSupplyJob(req, key) })
}

func (p *InstructionPublisher) publish(ctx context.Context, build func(key string) *JobExecutionMessage) (string, error) {
	if p == nil || p.enqueuer == nil {
		return "", fmt.Errorf("core: instruction publisher is not configured")
	}
	key := p.keys()
	msg := build(key)
	if err := p.enqueuer.Enqueue(ctx, msg); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryExternal, "core: enqueue instruction failed").
			WithTextCode(ErrorLedgerRejected).
			WithMetadata(map[string]any{"job_id": msg.JobID, "idempotency_key": key})
	}
	return key, nil
}

func requirePrincipals(caller string, owner string) error {
	if normalizePrincipal(caller) == "" {
		return NewRedeemError(ErrorBadInput, "core: caller is required", nil)
	}
	if normalizePrincipal(owner) == "" {
		return NewRedeemError(ErrorBadInput, "core: owner is required", nil)
	}
	return nil
}

// LoggingJobHook reports worker lifecycle events through the logger.
type LoggingJobHook struct {
	logger Logger
}

func NewLoggingJobHook(logger Logger) *LoggingJobHook {
	if logger == nil {
		logger = glog.Nop()
	}
	return &LoggingJobHook{logger: logger}
}

func (h *LoggingJobHook) OnStart(ctx context.Context, event JobWorkerEvent) {
	h.log(ctx, "info", "instruction started", event)
}

func (h *LoggingJobHook) OnSuccess(ctx context.Context, event JobWorkerEvent) {
	h.log(ctx, "info", "instruction succeeded", event)
}

func (h *LoggingJobHook) OnFailure(ctx context.Context, event JobWorkerEvent) {
	h.log(ctx, "error", "instruction failed", event)
}

func (h *LoggingJobHook) OnRetry(ctx context.Context, event JobWorkerEvent) {
	h.log(ctx, "warn", "instruction retry suppressed", event)
}

func (h *LoggingJobHook) log(ctx context.Context, level string, message string, event JobWorkerEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"attempt":     event.Attempt,
		"duration_ms": event.Duration.Milliseconds(),
	}
	if event.Message != nil {
		fields["job_id"] = event.Message.JobID
		fields["idempotency_key"] = event.Message.IdempotencyKey
	}
	if event.Err != nil {
		fields["error"] = event.Err.Error()
		if code := KindOf(event.Err); code != "" {
			fields["error_text_code"] = code
		}
	}
	logger := h.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	args := flattenFields(fields)
	switch level {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}
