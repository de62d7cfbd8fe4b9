package gocommand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	redeem "github.com/goliatone/go-redeem"
	redeemcommand "github.com/goliatone/go-redeem/command"
	"github.com/goliatone/go-redeem/core"
	redeemquery "github.com/goliatone/go-redeem/query"
)

var errRegistryNotConfigured = errors.New("gocommand: registry is not configured")

// ValidateMessageContract checks that msg names a non-blank Type and passes
// its own Validate when it has one.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	typed, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(typed.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// RegistryAdapter wraps a go-command registry so redeem handlers and queue
// resolvers are registered in one place.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) ready() (*command.Registry, error) {
	if a == nil || a.registry == nil {
		return nil, errRegistryNotConfigured
	}
	return a.registry, nil
}

// RegisterCommand accepts command and query handlers alike; go-command keys
// both by message type.
func (a *RegistryAdapter) RegisterCommand(handler any) error {
	registry, err := a.ready()
	if err != nil {
		return err
	}
	return registry.RegisterCommand(handler)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	registry, err := a.ready()
	if err != nil {
		return err
	}
	return registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors every registered command into the go-job queue
// registry so instructions can also be executed by queue workers.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	registry, err := a.ready()
	if err != nil {
		return false
	}
	return registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	registry, err := a.ready()
	if err != nil {
		return err
	}
	return registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe subscribes cmd on the global dispatcher and registers
// it. The subscription is dropped when registration fails.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	return subscribeThenRegister(adapter, cmd, func() commanddispatcher.Subscription {
		return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	})
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	return subscribeThenRegister(adapter, qry, func() commanddispatcher.Subscription {
		return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	})
}

func subscribeThenRegister(
	adapter *RegistryAdapter,
	handler any,
	subscribe func() commanddispatcher.Subscription,
) (commanddispatcher.Subscription, error) {
	if _, err := adapter.ready(); err != nil {
		return nil, err
	}
	subscription := subscribe()
	if err := adapter.RegisterCommand(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// RegisterFacade registers and subscribes every redeem command and query. On
// failure the subscriptions made so far are released.
func RegisterFacade(
	adapter *RegistryAdapter,
	facade *redeem.Facade,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if facade == nil {
		return nil, fmt.Errorf("gocommand: redeem facade is required")
	}
	commands := facade.Commands()
	queries := facade.Queries()

	subscriptions := make([]commanddispatcher.Subscription, 0, 12)
	register := func(subscription commanddispatcher.Subscription, err error) error {
		if err != nil {
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}
	steps := []func() error{
		func() error { return register(RegisterAndSubscribe[redeemcommand.CreateCatalogMessage](adapter, commands.CreateCatalog, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.IncreaseCapacityMessage](adapter, commands.IncreaseCapacity, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.AddItemTypeMessage](adapter, commands.AddItemType, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.SetRewardRateMessage](adapter, commands.SetRewardRate, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.EditRewardRateMessage](adapter, commands.EditRewardRate, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.IssueMessage](adapter, commands.Issue, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.RedeemMessage](adapter, commands.Redeem, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribe[redeemcommand.MintSupplyMessage](adapter, commands.MintSupply, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribeQuery[redeemquery.GetCatalogMessage, core.Catalog](adapter, queries.GetCatalog, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribeQuery[redeemquery.GetHolderInfoMessage, core.HolderInfo](adapter, queries.GetHolderInfo, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribeQuery[redeemquery.DeriveAddressesMessage, core.CatalogAddresses](adapter, queries.DeriveAddresses, runnerOpts...)) },
		func() error { return register(RegisterAndSubscribeQuery[redeemquery.ListAuditRecordsMessage, core.AuditPage](adapter, queries.ListAuditRecords, runnerOpts...)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			for _, subscription := range subscriptions {
				if subscription != nil {
					subscription.Unsubscribe()
				}
			}
			return nil, err
		}
	}
	return subscriptions, nil
}
