package core

import (
	"context"
	"fmt"
	"math/bits"
	"strings"
	"sync"
)

// MemoryAssetLedger tracks balances per asset and holder in process. Burns
// and transfers must be authorized by the debited account.
type MemoryAssetLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64
}

func NewMemoryAssetLedger() *MemoryAssetLedger {
	return &MemoryAssetLedger{balances: map[string]map[string]uint64{}}
}

func (l *MemoryAssetLedger) Mint(_ context.Context, instruction MintInstruction) error {
	if l == nil {
		return fmt.Errorf("core: asset ledger is not configured")
	}
	asset, to := strings.TrimSpace(instruction.Asset), strings.TrimSpace(instruction.To)
	if asset == "" || to == "" {
		return fmt.Errorf("core: mint asset and recipient are required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creditLocked(asset, to, instruction.Quantity)
}

func (l *MemoryAssetLedger) Burn(_ context.Context, instruction BurnInstruction) error {
	if l == nil {
		return fmt.Errorf("core: asset ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkBurnLocked(instruction); err != nil {
		return err
	}
	l.debitLocked(strings.TrimSpace(instruction.Asset), strings.TrimSpace(instruction.From), instruction.Quantity)
	return nil
}

func (l *MemoryAssetLedger) Transfer(_ context.Context, instruction TransferInstruction) error {
	if l == nil {
		return fmt.Errorf("core: asset ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkTransferLocked(instruction); err != nil {
		return err
	}
	return l.applyTransferLocked(instruction)
}

// Settle validates both legs before applying either of them.
func (l *MemoryAssetLedger) Settle(_ context.Context, instruction SettlementInstruction) error {
	if l == nil {
		return fmt.Errorf("core: asset ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkBurnLocked(instruction.Burn); err != nil {
		return err
	}
	if err := l.checkTransferLocked(instruction.Transfer); err != nil {
		return err
	}
	l.debitLocked(strings.TrimSpace(instruction.Burn.Asset), strings.TrimSpace(instruction.Burn.From), instruction.Burn.Quantity)
	return l.applyTransferLocked(instruction.Transfer)
}

func (l *MemoryAssetLedger) Balance(_ context.Context, asset string, holder string) (uint64, error) {
	if l == nil {
		return 0, fmt.Errorf("core: asset ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[strings.TrimSpace(asset)][strings.TrimSpace(holder)], nil
}

func (l *MemoryAssetLedger) checkBurnLocked(instruction BurnInstruction) error {
	asset, from := strings.TrimSpace(instruction.Asset), strings.TrimSpace(instruction.From)
	if asset == "" || from == "" {
		return fmt.Errorf("core: burn asset and holder are required")
	}
	if strings.TrimSpace(instruction.Authority) != from {
		return fmt.Errorf("core: burn of %s not authorized by holder %s", asset, from)
	}
	if l.balances[asset][from] < instruction.Quantity {
		return fmt.Errorf("core: insufficient %s balance for %s", asset, from)
	}
	return nil
}

func (l *MemoryAssetLedger) checkTransferLocked(instruction TransferInstruction) error {
	asset, from, to := strings.TrimSpace(instruction.Asset), strings.TrimSpace(instruction.From), strings.TrimSpace(instruction.To)
	if asset == "" || from == "" || to == "" {
		return fmt.Errorf("core: transfer asset, source and destination are required")
	}
	if strings.TrimSpace(instruction.Authority) != from {
		return fmt.Errorf("core: transfer of %s not authorized by source %s", asset, from)
	}
	if l.balances[asset][from] < instruction.Amount {
		return fmt.Errorf("core: insufficient %s balance for %s", asset, from)
	}
	if _, carry := bits.Add64(l.balances[asset][to], instruction.Amount, 0); carry != 0 && from != to {
		return fmt.Errorf("core: %s balance overflow for %s", asset, to)
	}
	return nil
}

func (l *MemoryAssetLedger) applyTransferLocked(instruction TransferInstruction) error {
	asset := strings.TrimSpace(instruction.Asset)
	from, to := strings.TrimSpace(instruction.From), strings.TrimSpace(instruction.To)
	if from == to {
		return nil
	}
	l.debitLocked(asset, from, instruction.Amount)
	return l.creditLocked(asset, to, instruction.Amount)
}

func (l *MemoryAssetLedger) creditLocked(asset string, holder string, amount uint64) error {
	holders, ok := l.balances[asset]
	if !ok {
		holders = map[string]uint64{}
		l.balances[asset] = holders
	}
	sum, carry := bits.Add64(holders[holder], amount, 0)
	if carry != 0 {
		return fmt.Errorf("core: %s balance overflow for %s", asset, holder)
	}
	holders[holder] = sum
	return nil
}

func (l *MemoryAssetLedger) debitLocked(asset string, holder string, amount uint64) {
	if amount == 0 {
		return
	}
	l.balances[asset][holder] -= amount
}
