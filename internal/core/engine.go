package core

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/olyamironova/artist-exchange/internal/port"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Options tunes the engine. Zero values fall back to DefaultOptions.
type Options struct {
	DispatchWorkers int
	QueueSize       int
	MaxRetries      int
	RetryBackoff    time.Duration
	TerminalMemory  int
	PriceWindow     time.Duration

	Clock func() time.Time
	NewID func() string

	// OnPersistFailure is called once a durable side effect exhausts its
	// retries.
	OnPersistFailure func(task string, err error)
}

func DefaultOptions() Options {
	return Options{
		DispatchWorkers: 4,
		QueueSize:       4096,
		MaxRetries:      5,
		RetryBackoff:    100 * time.Millisecond,
		TerminalMemory:  100_000,
		PriceWindow:     24 * time.Hour,
		Clock:           time.Now,
		NewID:           uuid.NewString,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DispatchWorkers <= 0 {
		o.DispatchWorkers = d.DispatchWorkers
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = d.RetryBackoff
	}
	if o.TerminalMemory == 0 {
		o.TerminalMemory = d.TerminalMemory
	}
	if o.PriceWindow <= 0 {
		o.PriceWindow = d.PriceWindow
	}
	if o.Clock == nil {
		o.Clock = d.Clock
	}
	if o.NewID == nil {
		o.NewID = d.NewID
	}
	return o
}

// OrderRequest is a new order as submitted by a caller. Price is ignored for
// MARKET orders.
type OrderRequest struct {
	InstrumentID string
	OwnerID      string
	Side         domain.Side
	Type         domain.OrderType
	Quantity     decimal.Decimal
	Price        decimal.Decimal
}

// Execution is the outcome of ProcessOrder: the incoming order in its final
// state and the trades it produced, in execution order.
type Execution struct {
	Order  domain.Order
	Trades []domain.Trade
}

type instrumentBook struct {
	mu      sync.RWMutex
	book    *OrderBook
	history *priceHistory
	version uint64
	ref     *domain.PriceTick
}

// Engine matches orders for any number of instruments. Calls for one
// instrument are serialized; different instruments proceed in parallel.
// Persistence and notifications run asynchronously after the book mutation.
type Engine struct {
	persist port.PersistenceGateway
	notify  port.NotificationGateway
	store   port.OrderStore
	log     *logger.Logger
	opts    Options

	mu    sync.RWMutex
	books map[string]*instrumentBook

	// order id -> instrument id, resting orders only
	locations sync.Map
	terminal  *terminalSet
	seq       atomic.Uint64
	dispatch  *dispatcher
	closed    atomic.Bool
}

// NewEngine builds an engine with DefaultOptions. store may be nil.
func NewEngine(persist port.PersistenceGateway, notify port.NotificationGateway, store port.OrderStore, log *logger.Logger) *Engine {
	return NewEngineWithOptions(persist, notify, store, log, DefaultOptions())
}

func NewEngineWithOptions(persist port.PersistenceGateway, notify port.NotificationGateway, store port.OrderStore, log *logger.Logger, opts Options) *Engine {
	opts = opts.withDefaults()
	if persist == nil {
		persist = nopPersistence{}
	}
	if notify == nil {
		notify = nopNotifier{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		persist:  persist,
		notify:   notify,
		store:    store,
		log:      log,
		opts:     opts,
		books:    make(map[string]*instrumentBook),
		terminal: newTerminalSet(opts.TerminalMemory),
		dispatch: newDispatcher(log, opts.DispatchWorkers, opts.QueueSize, opts.MaxRetries, opts.RetryBackoff, opts.OnPersistFailure),
	}
}

func (e *Engine) book(instrumentID string) *instrumentBook {
	e.mu.RLock()
	ib := e.books[instrumentID]
	e.mu.RUnlock()
	if ib != nil {
		return ib
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ib = e.books[instrumentID]; ib == nil {
		ib = &instrumentBook{
			book:    NewOrderBook(instrumentID),
			history: newPriceHistory(e.opts.PriceWindow),
		}
		e.books[instrumentID] = ib
	}
	return ib
}

func (e *Engine) existing(instrumentID string) *instrumentBook {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.books[instrumentID]
}

// Instruments lists every instrument that has had a book created.
func (e *Engine) Instruments() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.books))
	for id := range e.books {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ProcessOrder validates req, matches it against the opposite side and rests
// any LIMIT remainder. A MARKET remainder is cancelled. The book is mutated
// atomically: either the whole match applies or, on a validation error,
// nothing does.
func (e *Engine) ProcessOrder(ctx context.Context, req OrderRequest) (*Execution, error) {
	if e.closed.Load() {
		return nil, domain.ErrEngineClosed
	}

	now := e.opts.Clock()
	o := &domain.Order{
		ID:           e.opts.NewID(),
		OwnerID:      req.OwnerID,
		InstrumentID: req.InstrumentID,
		Side:         req.Side,
		Type:         req.Type,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Remaining:    req.Quantity,
		Status:       domain.Pending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if o.Type == domain.Market {
		o.Price = decimal.Zero
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	ib := e.book(o.InstrumentID)
	ib.mu.Lock()
	defer ib.mu.Unlock()
	if e.closed.Load() {
		return nil, domain.ErrEngineClosed
	}

	if _, dup := ib.book.Lookup(o.ID); dup {
		return nil, domain.ErrDuplicateOrder
	}
	o.Sequence = e.seq.Add(1)

	res := e.match(ib, o, now)

	var update *domain.OrderUpdate
	switch {
	case o.Remaining.IsZero():
	case o.Type == domain.Limit:
		if err := ib.book.Add(o); err != nil {
			// o was validated and its id checked before matching
			panic(errors.Wrap(err, "rest validated order"))
		}
		res.touch(o.Side, o.Price)
		e.locations.Store(o.ID, o.InstrumentID)
		u := orderUpdate(*o, domain.OrderNew, now)
		update = &u
	default:
		o.Status = domain.Cancelled
		o.UpdatedAt = now
		u := orderUpdate(*o, domain.OrderCancelled, now)
		update = &u
	}
	if o.Status.Terminal() {
		e.terminal.add(*o)
	}

	var delta *domain.OrderbookDelta
	if len(res.touched) > 0 {
		ib.version++
		delta = &domain.OrderbookDelta{
			InstrumentID: o.InstrumentID,
			Changes:      res.changes(ib.book),
			Version:      ib.version,
			Timestamp:    now,
		}
	}

	e.log.Debug("order processed",
		logger.NewField("request_id", logger.RequestID(ctx)),
		logger.NewField("order_id", o.ID),
		logger.NewField("instrument_id", o.InstrumentID),
		logger.NewField("status", string(o.Status)),
		logger.NewField("trades", len(res.trades)),
	)

	e.dispatchOutcome(ctx, o, res, delta, update)

	return &Execution{Order: *o, Trades: res.trades}, nil
}

type touchedLevel struct {
	side  domain.Side
	price decimal.Decimal
}

type matchResult struct {
	trades  []domain.Trade
	ticks   []domain.PriceTick
	resting []*domain.Order
	touched []touchedLevel
}

func (r *matchResult) touch(side domain.Side, price decimal.Decimal) {
	for _, t := range r.touched {
		if t.side == side && t.price.Equal(price) {
			return
		}
	}
	r.touched = append(r.touched, touchedLevel{side: side, price: price})
}

func (r *matchResult) addResting(o *domain.Order) {
	for _, seen := range r.resting {
		if seen == o {
			return
		}
	}
	r.resting = append(r.resting, o)
}

func (r *matchResult) changes(ob *OrderBook) []domain.LevelChange {
	out := make([]domain.LevelChange, 0, len(r.touched))
	for _, t := range r.touched {
		out = append(out, domain.LevelChange{
			Side:     t.side,
			Price:    t.price,
			Quantity: ob.LevelQuantity(t.side, t.price),
		})
	}
	return out
}

// crosses reports whether a LIMIT order accepts the best opposite price.
func crosses(o *domain.Order, bookPrice decimal.Decimal) bool {
	if o.Side == domain.Buy {
		return bookPrice.LessThanOrEqual(o.Price)
	}
	return bookPrice.GreaterThanOrEqual(o.Price)
}

func (e *Engine) match(ib *instrumentBook, o *domain.Order, now time.Time) *matchResult {
	res := &matchResult{}
	opposite := o.Side.Opposite()

	for o.Remaining.IsPositive() {
		lvl := ib.book.Best(opposite)
		if lvl == nil {
			break
		}
		if o.Type == domain.Limit && !crosses(o, lvl.Price) {
			break
		}

		levelPrice := lvl.Price
		qty := decimal.Min(o.Remaining, lvl.Front().Remaining)
		resting := ib.book.Fill(lvl, qty, now)
		o.Fill(qty, now)
		res.touch(opposite, levelPrice)
		res.addResting(resting)

		buy, sell := o, resting
		if o.Side == domain.Sell {
			buy, sell = resting, o
		}
		t := domain.Trade{
			ID:           e.opts.NewID(),
			InstrumentID: o.InstrumentID,
			BuyOrderID:   buy.ID,
			SellOrderID:  sell.ID,
			BuyOwnerID:   buy.OwnerID,
			SellOwnerID:  sell.OwnerID,
			Price:        resting.Price,
			Quantity:     qty,
			ExecutedAt:   now,
		}
		res.trades = append(res.trades, t)

		tick := domain.PriceTick{
			InstrumentID: o.InstrumentID,
			Price:        t.Price,
			Change24h:    ib.history.record(now, t.Price),
			Timestamp:    now,
		}
		ib.ref = &tick
		res.ticks = append(res.ticks, tick)

		if resting.Remaining.IsZero() {
			e.locations.Delete(resting.ID)
			e.terminal.add(*resting)
		}
	}
	return res
}

func orderUpdate(o domain.Order, event domain.OrderEvent, at time.Time) domain.OrderUpdate {
	return domain.OrderUpdate{
		Event:        event,
		OrderID:      o.ID,
		InstrumentID: o.InstrumentID,
		Side:         o.Side,
		Price:        o.Price,
		Remaining:    o.Remaining,
		Status:       o.Status,
		Timestamp:    at,
	}
}

// dispatchOutcome queues the side effects of one ProcessOrder call. The
// incoming order is recorded before the trades that reference it.
func (e *Engine) dispatchOutcome(ctx context.Context, o *domain.Order, res *matchResult, delta *domain.OrderbookDelta, update *domain.OrderUpdate) {
	fields := []logger.Field{
		logger.NewField("instrument_id", o.InstrumentID),
		logger.NewField("request_id", logger.RequestID(ctx)),
	}

	tasks := make([]task, 0, 2+len(res.resting)+5*len(res.trades))
	tasks = append(tasks, e.recordOrder(*o, fields))
	for _, r := range res.resting {
		tasks = append(tasks, e.recordOrder(*r, fields))
	}
	for i, t := range res.trades {
		tasks = append(tasks, e.recordTrade(t, fields), e.recordPrice(res.ticks[i], fields))
	}
	for i, t := range res.trades {
		tasks = append(tasks, e.publishTrade(t.BuyOwnerID, t.FillFor(t.BuyOrderID), fields))
		tasks = append(tasks, e.publishTrade(t.SellOwnerID, t.FillFor(t.SellOrderID), fields))
		tasks = append(tasks, e.publishTick(res.ticks[i], fields))
	}
	if delta != nil {
		tasks = append(tasks, e.publishDelta(*delta, fields))
	}
	if update != nil {
		tasks = append(tasks, e.publishOrderUpdate(o.OwnerID, *update, fields))
	}
	e.dispatch.submit(o.InstrumentID, tasks...)
}

func with(fields []logger.Field, extra ...logger.Field) []logger.Field {
	out := make([]logger.Field, 0, len(fields)+len(extra))
	out = append(out, fields...)
	return append(out, extra...)
}

func (e *Engine) recordOrder(o domain.Order, fields []logger.Field) task {
	return task{
		name:    "record_order",
		durable: true,
		fields:  with(fields, logger.NewField("order_id", o.ID)),
		run: func(ctx context.Context) error {
			return e.persist.RecordOrder(ctx, &o)
		},
	}
}

func (e *Engine) recordTrade(t domain.Trade, fields []logger.Field) task {
	return task{
		name:    "record_trade",
		durable: true,
		fields:  with(fields, logger.NewField("trade_id", t.ID)),
		run: func(ctx context.Context) error {
			return e.persist.RecordTrade(ctx, &t)
		},
	}
}

func (e *Engine) recordPrice(tick domain.PriceTick, fields []logger.Field) task {
	return task{
		name:    "update_instrument_price",
		durable: true,
		fields:  with(fields, logger.NewField("price", tick.Price.String())),
		run: func(ctx context.Context) error {
			return e.persist.UpdateInstrumentPrice(ctx, tick.InstrumentID, tick.Price, tick.Change24h, tick.Timestamp)
		},
	}
}

func (e *Engine) publishTrade(userID string, fill domain.Fill, fields []logger.Field) task {
	return task{
		name:   "publish_trade",
		fields: with(fields, logger.NewField("trade_id", fill.TradeID), logger.NewField("user_id", userID)),
		run: func(ctx context.Context) error {
			return e.notify.PublishTrade(ctx, userID, fill)
		},
	}
}

func (e *Engine) publishTick(tick domain.PriceTick, fields []logger.Field) task {
	return task{
		name:   "publish_price_tick",
		fields: fields,
		run: func(ctx context.Context) error {
			return e.notify.PublishPriceTick(ctx, tick)
		},
	}
}

func (e *Engine) publishDelta(delta domain.OrderbookDelta, fields []logger.Field) task {
	return task{
		name:   "publish_orderbook_delta",
		fields: with(fields, logger.NewField("version", delta.Version)),
		run: func(ctx context.Context) error {
			return e.notify.PublishOrderbookDelta(ctx, delta.InstrumentID, delta)
		},
	}
}

func (e *Engine) publishOrderUpdate(userID string, u domain.OrderUpdate, fields []logger.Field) task {
	return task{
		name:   "publish_order_update",
		fields: with(fields, logger.NewField("order_id", u.OrderID), logger.NewField("event", string(u.Event))),
		run: func(ctx context.Context) error {
			return e.notify.PublishOrderUpdate(ctx, userID, u)
		},
	}
}

// CancelOrder removes a resting order from its book. When ownerID is not
// empty it must match the order's owner; a mismatch is reported as not
// found. Cancelling a filled or cancelled order returns ErrAlreadyTerminal.
func (e *Engine) CancelOrder(ctx context.Context, orderID, ownerID string) (*domain.Order, error) {
	if e.closed.Load() {
		return nil, domain.ErrEngineClosed
	}
	if orderID == "" {
		return nil, domain.NewValidationError("order_id", "required")
	}

	v, ok := e.locations.Load(orderID)
	if !ok {
		return nil, e.notResting(ctx, orderID, ownerID)
	}
	ib := e.existing(v.(string))
	if ib == nil {
		return nil, e.notResting(ctx, orderID, ownerID)
	}

	ib.mu.Lock()
	defer ib.mu.Unlock()
	if e.closed.Load() {
		return nil, domain.ErrEngineClosed
	}

	o, ok := ib.book.Lookup(orderID)
	if !ok {
		// filled between the location lookup and the lock
		return nil, e.notResting(ctx, orderID, ownerID)
	}
	if ownerID != "" && o.OwnerID != ownerID {
		return nil, domain.ErrOrderNotFound
	}

	now := e.opts.Clock()
	ib.book.Remove(orderID)
	o.Status = domain.Cancelled
	o.UpdatedAt = now
	e.locations.Delete(orderID)
	e.terminal.add(*o)

	ib.version++
	delta := domain.OrderbookDelta{
		InstrumentID: o.InstrumentID,
		Changes: []domain.LevelChange{{
			Side:     o.Side,
			Price:    o.Price,
			Quantity: ib.book.LevelQuantity(o.Side, o.Price),
		}},
		Version:   ib.version,
		Timestamp: now,
	}

	final := *o
	fields := []logger.Field{
		logger.NewField("instrument_id", final.InstrumentID),
		logger.NewField("request_id", logger.RequestID(ctx)),
	}
	e.dispatch.submit(final.InstrumentID,
		e.recordOrder(final, fields),
		e.publishDelta(delta, fields),
		e.publishOrderUpdate(final.OwnerID, orderUpdate(final, domain.OrderCancelled, now), fields),
	)

	e.log.InfoContext(ctx, "order cancelled",
		logger.NewField("order_id", final.ID),
		logger.NewField("instrument_id", final.InstrumentID),
		logger.NewField("remaining", final.Remaining.String()),
	)
	return &final, nil
}

func (e *Engine) notResting(ctx context.Context, orderID, ownerID string) error {
	if o, ok := e.terminal.get(orderID); ok {
		if ownerID != "" && o.OwnerID != ownerID {
			return domain.ErrOrderNotFound
		}
		return domain.ErrAlreadyTerminal
	}
	if e.store == nil {
		return domain.ErrOrderNotFound
	}
	o, err := e.store.LoadOrder(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			e.log.WarnContext(ctx, "order store lookup failed",
				logger.NewField("order_id", orderID),
				logger.NewField("error", err.Error()),
			)
		}
		return domain.ErrOrderNotFound
	}
	if ownerID != "" && o.OwnerID != ownerID {
		return domain.ErrOrderNotFound
	}
	if o.Status.Terminal() {
		return domain.ErrAlreadyTerminal
	}
	return domain.ErrOrderNotFound
}

// Order returns the current state of an order: from the book while it rests,
// then from recent terminal orders, then from the store.
func (e *Engine) Order(ctx context.Context, orderID string) (*domain.Order, error) {
	if v, ok := e.locations.Load(orderID); ok {
		if ib := e.existing(v.(string)); ib != nil {
			ib.mu.RLock()
			o, found := ib.book.Lookup(orderID)
			var cp domain.Order
			if found {
				cp = *o
			}
			ib.mu.RUnlock()
			if found {
				return &cp, nil
			}
		}
	}
	if o, ok := e.terminal.get(orderID); ok {
		return &o, nil
	}
	if e.store == nil {
		return nil, domain.ErrOrderNotFound
	}
	o, err := e.store.LoadOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}
	return o, nil
}

// TradesForOrder returns the persisted trades of orderID, oldest first.
// Trades still queued for persistence are not included.
func (e *Engine) TradesForOrder(ctx context.Context, orderID string) ([]domain.Trade, error) {
	if e.store == nil {
		return []domain.Trade{}, nil
	}
	trades, err := e.store.LoadTrades(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "load trades")
	}
	return trades, nil
}

// Position returns the persisted net holding of ownerID in instrumentID.
func (e *Engine) Position(ctx context.Context, ownerID, instrumentID string) (decimal.Decimal, error) {
	if e.store == nil {
		return decimal.Zero, nil
	}
	qty, err := e.store.LoadPosition(ctx, ownerID, instrumentID)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "load position")
	}
	return qty, nil
}

// Snapshot returns up to depth aggregated levels per side. Unknown
// instruments yield an empty snapshot.
func (e *Engine) Snapshot(instrumentID string, depth int) domain.OrderbookSnapshot {
	snap := domain.OrderbookSnapshot{
		InstrumentID: instrumentID,
		Bids:         []domain.BookLevel{},
		Asks:         []domain.BookLevel{},
		Timestamp:    e.opts.Clock(),
	}
	ib := e.existing(instrumentID)
	if ib == nil {
		return snap
	}
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	snap.Bids, snap.Asks = ib.book.Snapshot(depth)
	snap.Version = ib.version
	return snap
}

func (e *Engine) BestBid(instrumentID string) (domain.BookLevel, bool) {
	ib := e.existing(instrumentID)
	if ib == nil {
		return domain.BookLevel{}, false
	}
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	return ib.book.BestBid()
}

func (e *Engine) BestAsk(instrumentID string) (domain.BookLevel, bool) {
	ib := e.existing(instrumentID)
	if ib == nil {
		return domain.BookLevel{}, false
	}
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	return ib.book.BestAsk()
}

// ReferencePrice returns the last trade price of an instrument with its
// 24h change.
func (e *Engine) ReferencePrice(instrumentID string) (domain.PriceTick, bool) {
	ib := e.existing(instrumentID)
	if ib == nil {
		return domain.PriceTick{}, false
	}
	ib.mu.RLock()
	defer ib.mu.RUnlock()
	if ib.ref == nil {
		return domain.PriceTick{}, false
	}
	return *ib.ref, true
}

// Restore puts previously persisted resting orders back into their books in
// sequence order. It must run before the engine serves traffic.
func (e *Engine) Restore(orders []*domain.Order) error {
	sorted := make([]*domain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Sequence != sorted[j].Sequence {
			return sorted[i].Sequence < sorted[j].Sequence
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	for _, o := range sorted {
		if !o.Resting() {
			return errors.Errorf("restore order %s: status %s cannot rest", o.ID, o.Status)
		}
		cp := *o
		ib := e.book(cp.InstrumentID)
		ib.mu.Lock()
		err := ib.book.Add(&cp)
		if err == nil {
			ib.version++
		}
		crossed := ib.book.Crossed()
		ib.mu.Unlock()
		if err != nil {
			return errors.Wrapf(err, "restore order %s", cp.ID)
		}
		if crossed {
			return errors.Errorf("restore order %s: book %s is crossed", cp.ID, cp.InstrumentID)
		}
		e.locations.Store(cp.ID, cp.InstrumentID)
		for {
			cur := e.seq.Load()
			if cp.Sequence <= cur || e.seq.CompareAndSwap(cur, cp.Sequence) {
				break
			}
		}
	}
	return nil
}

// Recover restores open orders from the order store. It is a no-op without
// a store.
func (e *Engine) Recover(ctx context.Context) (int, error) {
	if e.store == nil {
		return 0, nil
	}
	orders, err := e.store.LoadOpenOrders(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "load open orders")
	}
	if err := e.Restore(orders); err != nil {
		return 0, err
	}
	e.log.Info("order books restored", logger.NewField("orders", len(orders)))
	return len(orders), nil
}

// Close rejects new calls and waits for queued side effects until ctx ends.
// A call that already holds an instrument lock finishes and queues its side
// effects before the dispatcher stops accepting them.
func (e *Engine) Close(ctx context.Context) error {
	e.closed.Store(true)
	e.mu.RLock()
	books := make([]*instrumentBook, 0, len(e.books))
	for _, ib := range e.books {
		books = append(books, ib)
	}
	e.mu.RUnlock()
	// wait out calls that passed the closed check before it was set
	for _, ib := range books {
		ib.mu.Lock()
		ib.mu.Unlock() //nolint:staticcheck
	}
	return e.dispatch.close(ctx)
}

type nopPersistence struct{}

func (nopPersistence) RecordOrder(context.Context, *domain.Order) error { return nil }
func (nopPersistence) RecordTrade(context.Context, *domain.Trade) error { return nil }
func (nopPersistence) UpdateInstrumentPrice(context.Context, string, decimal.Decimal, decimal.Decimal, time.Time) error {
	return nil
}

type nopNotifier struct{}

func (nopNotifier) PublishOrderbookDelta(context.Context, string, domain.OrderbookDelta) error {
	return nil
}
func (nopNotifier) PublishTrade(context.Context, string, domain.Fill) error              { return nil }
func (nopNotifier) PublishPriceTick(context.Context, domain.PriceTick) error             { return nil }
func (nopNotifier) PublishOrderUpdate(context.Context, string, domain.OrderUpdate) error { return nil }
