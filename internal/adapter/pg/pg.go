package pg

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/port"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	_ port.PersistenceGateway = (*PgRepo)(nil)
	_ port.OrderStore         = (*PgRepo)(nil)
)

//go:embed schema.sql
var schema string

type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finish to work with database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pg: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pg: ping")
	}
	return &PgRepo{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (p *PgRepo) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)
	return errors.Wrap(err, "pg: migrate")
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "pg: begin")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "pg: commit")
	}
	committed = true
	return nil
}

// RecordOrder upserts the latest state of o. A row never moves back from a
// terminal status.
func (p *PgRepo) RecordOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("pg: nil order")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO orders(id, owner_id, instrument_id, side, type, price, quantity, remaining, status, sequence, created_at, updated_at)
VALUES($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8::numeric,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
  remaining = EXCLUDED.remaining,
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at
WHERE orders.status NOT IN ('FILLED', 'CANCELLED')
`, o.ID, o.OwnerID, o.InstrumentID, string(o.Side), string(o.Type),
		o.Price.String(), o.Quantity.String(), o.Remaining.String(), string(o.Status),
		int64(o.Sequence), o.CreatedAt, o.UpdatedAt)
	return errors.Wrapf(err, "pg: record order %s", o.ID)
}

// RecordTrade inserts t and moves both owners' positions in one transaction.
// A replayed trade changes nothing.
func (p *PgRepo) RecordTrade(ctx context.Context, t *domain.Trade) error {
	if t == nil {
		return errors.New("pg: nil trade")
	}
	return withTx(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
INSERT INTO trades(id, instrument_id, buy_order_id, sell_order_id, buy_owner_id, sell_owner_id, price, quantity, executed_at)
VALUES($1,$2,$3,$4,$5,$6,$7::numeric,$8::numeric,$9)
ON CONFLICT (id) DO NOTHING
`, t.ID, t.InstrumentID, t.BuyOrderID, t.SellOrderID, t.BuyOwnerID, t.SellOwnerID,
			t.Price.String(), t.Quantity.String(), t.ExecutedAt)
		if err != nil {
			return errors.Wrapf(err, "pg: insert trade %s", t.ID)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		for _, leg := range []struct {
			owner string
			delta decimal.Decimal
		}{
			{t.BuyOwnerID, t.Quantity},
			{t.SellOwnerID, t.Quantity.Neg()},
		} {
			if _, err := tx.Exec(ctx, `
INSERT INTO positions(owner_id, instrument_id, quantity)
VALUES($1,$2,$3::numeric)
ON CONFLICT (owner_id, instrument_id) DO UPDATE SET quantity = positions.quantity + EXCLUDED.quantity
`, leg.owner, t.InstrumentID, leg.delta.String()); err != nil {
				return errors.Wrapf(err, "pg: update position %s", leg.owner)
			}
		}
		return nil
	})
}

// UpdateInstrumentPrice stores the reference price unless a newer one is
// already there.
func (p *PgRepo) UpdateInstrumentPrice(ctx context.Context, instrumentID string, price, change24h decimal.Decimal, at time.Time) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO instruments(id, price, change_24h, updated_at)
VALUES($1,$2::numeric,$3::numeric,$4)
ON CONFLICT (id) DO UPDATE SET
  price = EXCLUDED.price,
  change_24h = EXCLUDED.change_24h,
  updated_at = EXCLUDED.updated_at
WHERE instruments.updated_at <= EXCLUDED.updated_at
`, instrumentID, price.String(), change24h.String(), at)
	return errors.Wrapf(err, "pg: update price %s", instrumentID)
}

const orderColumns = `id, owner_id, instrument_id, side, type, price::text, quantity::text, remaining::text, status, sequence, created_at, updated_at`

// LoadOpenOrders returns resting orders ordered by sequence.
func (p *PgRepo) LoadOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := p.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE status IN ('PENDING', 'PARTIALLY_FILLED') AND type = 'LIMIT' AND remaining > 0
ORDER BY sequence ASC
`)
	if err != nil {
		return nil, errors.Wrap(err, "pg: load open orders")
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, errors.Wrap(rows.Err(), "pg: load open orders")
}

func (p *PgRepo) LoadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

// LoadTrades returns the trades in which orderID took part, oldest first.
func (p *PgRepo) LoadTrades(ctx context.Context, orderID string) ([]domain.Trade, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, instrument_id, buy_order_id, sell_order_id, buy_owner_id, sell_owner_id, price::text, quantity::text, executed_at
FROM trades
WHERE buy_order_id = $1 OR sell_order_id = $1
ORDER BY executed_at ASC, id ASC
`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "pg: load trades")
	}
	defer rows.Close()

	res := []domain.Trade{}
	for rows.Next() {
		var (
			t               domain.Trade
			price, quantity string
		)
		if err := rows.Scan(&t.ID, &t.InstrumentID, &t.BuyOrderID, &t.SellOrderID, &t.BuyOwnerID, &t.SellOwnerID, &price, &quantity, &t.ExecutedAt); err != nil {
			return nil, errors.Wrap(err, "pg: scan trade")
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrapf(err, "pg: trade %s price", t.ID)
		}
		if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, errors.Wrapf(err, "pg: trade %s quantity", t.ID)
		}
		res = append(res, t)
	}
	return res, errors.Wrap(rows.Err(), "pg: load trades")
}

// LoadPosition returns the net quantity of instrumentID held by owner.
func (p *PgRepo) LoadPosition(ctx context.Context, ownerID, instrumentID string) (decimal.Decimal, error) {
	var qty string
	err := p.pool.QueryRow(ctx, `SELECT quantity::text FROM positions WHERE owner_id = $1 AND instrument_id = $2`, ownerID, instrumentID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "pg: load position")
	}
	return decimal.NewFromString(qty)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                          domain.Order
		side, typ, status          string
		price, quantity, remaining string
		seq                        int64
	)
	if err := row.Scan(&o.ID, &o.OwnerID, &o.InstrumentID, &side, &typ, &price, &quantity, &remaining, &status, &seq, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "pg: scan order")
	}
	var err error
	if o.Price, err = decimal.NewFromString(price); err != nil {
		return nil, errors.Wrapf(err, "pg: order %s price", o.ID)
	}
	if o.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, errors.Wrapf(err, "pg: order %s quantity", o.ID)
	}
	if o.Remaining, err = decimal.NewFromString(remaining); err != nil {
		return nil, errors.Wrapf(err, "pg: order %s remaining", o.ID)
	}
	o.Side = domain.Side(side)
	o.Type = domain.OrderType(typ)
	o.Status = domain.OrderStatus(status)
	o.Sequence = uint64(seq)
	return &o, nil
}
