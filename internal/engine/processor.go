package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"pyth_index/internal/domain"
	"pyth_index/internal/event"
	"pyth_index/internal/infra"
	"pyth_index/internal/layout"
	"pyth_index/internal/service"
)

// DecodedAccount is the result of a decode instruction. The view is released
// before the result is returned, so only copied fields are exposed.
type DecodedAccount struct {
	Key    string        `json:"key"`
	Kind   string        `json:"kind"`
	Header layout.Header `json:"header"`
	Valid  bool          `json:"valid"`
	Error  string        `json:"error,omitempty"`
}

// Processor executes instructions one at a time in sequence order.
type Processor struct {
	svc     *service.OracleService
	inbox   chan event.Instruction
	results chan event.Result
	metrics *infra.Metrics

	mu      sync.Mutex // guards nextSeq for Execute callers outside Run
	nextSeq uint64
}

// NewProcessor creates a processor whose first expected sequence number is 1.
func NewProcessor(svc *service.OracleService, inboxSize int, metrics *infra.Metrics) *Processor {
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Processor{
		svc:     svc,
		inbox:   make(chan event.Instruction, inboxSize),
		results: make(chan event.Result, inboxSize),
		metrics: metrics,
		nextSeq: 1,
	}
}

// Inbox returns the instruction channel consumed by Run.
func (p *Processor) Inbox() chan<- event.Instruction {
	return p.inbox
}

// Results returns the channel Run publishes results on.
func (p *Processor) Results() <-chan event.Result {
	return p.results
}

// NextSeq returns the sequence number the processor expects next.
func (p *Processor) NextSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextSeq
}

// Run consumes the inbox until ctx is done. It must run in a single goroutine.
func (p *Processor) Run(ctx context.Context) {
	slog.Debug("Processor started")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			p.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Processor stopping...")
			return
		case in := <-p.inbox:
			value, err := p.Execute(ctx, in)
			res := event.Result{Seq: in.GetSeq(), Type: in.GetType(), Value: value, Err: err}
			select {
			case p.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Execute runs one instruction synchronously. An out-of-order sequence number
// is rejected with domain.ErrSequenceGap and does not advance the sequence.
// Failures are wrapped in *domain.OperationError.
func (p *Processor) Execute(ctx context.Context, in event.Instruction) (any, error) {
	op := in.GetType().String()

	p.mu.Lock()
	defer p.mu.Unlock()

	// 1. Sequence Gap Check
	if in.GetSeq() != p.nextSeq {
		err := fmt.Errorf("%w: expected %d, got %d", domain.ErrSequenceGap, p.nextSeq, in.GetSeq())
		slog.Warn("Instruction rejected", slog.String("op", op), slog.Any("error", err))
		return nil, domain.NewOperationError(op, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewOperationError(op, err)
	}
	p.nextSeq++

	// 2. Dispatch
	start := time.Now()
	value, err := p.dispatch(in)
	p.metrics.RecordInvocation(time.Since(start).Nanoseconds())

	if err != nil {
		slog.Debug("Instruction failed",
			slog.Uint64("seq", in.GetSeq()),
			slog.String("op", op),
			slog.Any("error", err))
		return nil, domain.NewOperationError(op, err)
	}
	return value, nil
}

func (p *Processor) dispatch(in event.Instruction) (any, error) {
	switch i := in.(type) {
	case *event.DecodeAccountInstruction:
		return p.decode(i)
	case *event.ShowPriceInstruction:
		return p.svc.ShowPrice(i.Product, i.Price)
	case *event.ShowProductInstruction:
		return p.svc.ShowProduct(i.Product)
	case *event.ShowMappingInstruction:
		return p.svc.ShowMapping(i.Mapping, i.From)
	case *event.EnumerateProductsInstruction:
		return p.svc.EnumerateProducts(i.Mapping)
	case *event.WalkMappingsInstruction:
		return p.svc.WalkMappings(i.First, i.MaxPages)
	case *event.ValidatePairInstruction:
		return nil, p.svc.ValidateProductPricePair(i.Product, i.Price)
	case *event.VerifyMappingInstruction:
		return p.svc.ValidateMappingProducts(i.Mapping)
	case *event.CreateIndexInstruction:
		return p.svc.CreateIndex(i.Name, i.Keys)
	case *event.DeleteIndexInstruction:
		return nil, p.svc.DeleteIndex(i.ID)
	case *event.DeleteIndexByNameInstruction:
		return p.svc.DeleteIndexByName(i.Name)
	case *event.LookupIndexInstruction:
		return p.svc.LookupIndex(i.Name)
	case *event.GetIndexInstruction:
		return p.svc.GetIndex(i.ID)
	case *event.ListIndicesInstruction:
		return p.svc.ListIndices(), nil
	case *event.AttachSnapshotInstruction:
		return p.svc.AttachSnapshot(i.ID, i.Product, i.Price)
	case *event.ListAccountsInstruction:
		return p.svc.ListAccounts()
	case *event.ImportAccountInstruction:
		return p.svc.ImportAccount(i.Key, i.Data)
	default:
		return nil, fmt.Errorf("unknown instruction type %s", in.GetType())
	}
}

// decode checks out the account, copies its header and validation outcome,
// then releases the view.
func (p *Processor) decode(i *event.DecodeAccountInstruction) (DecodedAccount, error) {
	out := DecodedAccount{Key: i.Key.String(), Kind: i.Kind.String()}

	var verr error
	switch i.Kind {
	case layout.AccountTypePrice:
		v, err := p.svc.DecodePrice(i.Key)
		if err != nil {
			return out, err
		}
		defer v.Release()
		out.Header = v.Header()
		verr = layout.ValidatePrice(v)
	case layout.AccountTypeProduct:
		v, err := p.svc.DecodeProduct(i.Key)
		if err != nil {
			return out, err
		}
		defer v.Release()
		out.Header = v.Header()
		verr = layout.ValidateProduct(v)
	case layout.AccountTypeMapping:
		v, err := p.svc.DecodeMapping(i.Key)
		if err != nil {
			return out, err
		}
		defer v.Release()
		out.Header = v.Header()
		verr = layout.ValidateMapping(v)
	default:
		return out, fmt.Errorf("%w: cannot decode %s account", domain.ErrWrongAccountType, i.Kind)
	}

	out.Valid = verr == nil
	if verr != nil {
		out.Error = verr.Error()
	}
	return out, nil
}

// DumpState writes the processor position and metrics to a file (for post-mortem).
func (p *Processor) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64                `json:"next_seq"`
		Metrics infra.MetricsSnapshot `json:"metrics"`
		Indices []domain.IndexEntry   `json:"indices"`
	}{
		NextSeq: p.NextSeq(),
		Metrics: p.metrics.Snapshot(),
		Indices: p.svc.ListIndices(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
