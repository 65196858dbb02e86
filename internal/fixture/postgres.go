// Package fixture persists and replays command/trade fixtures against
// PostgreSQL, entirely outside the matching core's call graph: the
// core is single-writer and synchronous, so nothing here is ever
// called from a hot matching path - only from setup and post-hoc
// reporting. The schema mirrors matching.Command and
// matching.OutputEvent's Trade variant.
package fixture

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/cedrichaddad/flash-lob/matching"
)

// batchPersistSize is the chunk size above which trade persistence is
// split across concurrent COPY transactions rather than done as one.
const batchPersistSize = 20000

const schemaDDL = `
DROP TYPE IF EXISTS lob_side CASCADE;
CREATE TYPE lob_side AS ENUM ('bid', 'ask');

DROP TYPE IF EXISTS lob_order_type CASCADE;
CREATE TYPE lob_order_type AS ENUM ('limit', 'ioc', 'fok');

DROP TABLE IF EXISTS fixture_commands CASCADE;
CREATE TABLE fixture_commands (
	seq bigserial primary key,
	order_id bigint,
	user_id bigint,
	side lob_side,
	price bigint,
	qty integer,
	order_type lob_order_type,
	cancel_id bigint,
	is_cancel boolean not null default false
) with (fillfactor=90);

DROP TABLE IF EXISTS fixture_trades CASCADE;
CREATE TABLE fixture_trades (
	id bigserial primary key,
	taker_order_id bigint,
	maker_order_id bigint,
	taker_user_id bigint,
	maker_user_id bigint,
	price bigint,
	qty integer
);
`

// ResetSchema drops and recreates the fixture tables. Intended for
// test and backtest setup only.
func ResetSchema(db *sql.DB, log *zap.Logger) error {
	if _, err := db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("fixture: reset schema: %w", err)
	}
	log.Info("fixture schema created")
	return nil
}

func sideLabel(side matching.Side) string {
	if side == matching.Bid {
		return "bid"
	}
	return "ask"
}

func orderTypeLabel(ot matching.OrderType) string {
	switch ot {
	case matching.IOC:
		return "ioc"
	case matching.FOK:
		return "fok"
	default:
		return "limit"
	}
}

// StoreCommands bulk-loads a command sequence via pq.CopyIn.
func StoreCommands(db *sql.DB, log *zap.Logger, commands []matching.Command) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("fixture: begin: %w", err)
	}

	stmt, err := tx.Prepare(pq.CopyIn("fixture_commands",
		"order_id", "user_id", "side", "price", "qty", "order_type", "cancel_id", "is_cancel"))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("fixture: prepare copy-in: %w", err)
	}

	for _, cmd := range commands {
		if cmd.Kind == matching.Cancel {
			if _, err := stmt.Exec(nil, nil, nil, nil, nil, nil, cmd.CancelID, true); err != nil {
				stmt.Close()
				tx.Rollback()
				return fmt.Errorf("fixture: exec cancel: %w", err)
			}
			continue
		}

		if _, err := stmt.Exec(cmd.OrderID, cmd.UserID, sideLabel(cmd.Side), cmd.Price, cmd.Qty, orderTypeLabel(cmd.OrderType), nil, false); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("fixture: exec place: %w", err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		tx.Rollback()
		return fmt.Errorf("fixture: flush copy-in: %w", err)
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return fmt.Errorf("fixture: close copy-in: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("fixture: commit: %w", err)
	}

	log.Info("fixture commands stored", zap.Int("count", len(commands)))
	return nil
}

// FetchCommands replays the fixture_commands table back into Commands
// in seq order, for deterministic backtest replay.
func FetchCommands(tx *sql.Tx) ([]matching.Command, error) {
	rows, err := tx.Query(`
		SELECT order_id, user_id, side, price, qty, order_type, cancel_id, is_cancel
		FROM fixture_commands ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("fixture: query commands: %w", err)
	}
	defer rows.Close()

	var out []matching.Command
	for rows.Next() {
		var (
			orderID, userID, cancelID sql.NullInt64
			side, orderType           sql.NullString
			price                     sql.NullInt64
			qty                       sql.NullInt64
			isCancel                  bool
		)
		if err := rows.Scan(&orderID, &userID, &side, &price, &qty, &orderType, &cancelID, &isCancel); err != nil {
			return nil, fmt.Errorf("fixture: scan command: %w", err)
		}

		if isCancel {
			out = append(out, matching.CancelCommand(uint64(cancelID.Int64)))
			continue
		}

		s := matching.Bid
		if side.String == "ask" {
			s = matching.Ask
		}
		ot := matching.Limit
		switch orderType.String {
		case "ioc":
			ot = matching.IOC
		case "fok":
			ot = matching.FOK
		}

		out = append(out, matching.PlaceCommand(
			uint64(orderID.Int64), uint64(userID.Int64), s, uint64(price.Int64), uint32(qty.Int64), ot,
		))
	}

	return out, rows.Err()
}

// PersistTrades bulk-writes every Trade event from a replay run in a
// single COPY.
func PersistTrades(tx *sql.Tx, log *zap.Logger, events []matching.OutputEvent) error {
	stmt, err := tx.Prepare(pq.CopyIn("fixture_trades",
		"taker_order_id", "maker_order_id", "taker_user_id", "maker_user_id", "price", "qty"))
	if err != nil {
		return fmt.Errorf("fixture: prepare trade copy-in: %w", err)
	}

	count := 0
	for _, e := range events {
		if e.Kind != matching.EventTrade {
			continue
		}
		if _, err := stmt.Exec(e.TakerOrderID, e.MakerOrderID, e.TakerUserID, e.MakerUserID, e.Price, e.Qty); err != nil {
			stmt.Close()
			return fmt.Errorf("fixture: exec trade: %w", err)
		}
		count++
	}

	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return fmt.Errorf("fixture: flush trade copy-in: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("fixture: close trade copy-in: %w", err)
	}

	log.Info("fixture trades persisted", zap.Int("count", count))
	return nil
}

// PersistTradesBatched fans a large trade batch out across concurrent
// PersistTrades calls, one per batchPersistSize chunk run in its own
// transaction, gated on a sync.WaitGroup. This is the only concurrency
// in the repository; it lives entirely outside the matching core's
// call graph and is used only for bulk, post-hoc trade persistence
// after a replay run.
func PersistTradesBatched(db *sql.DB, log *zap.Logger, events []matching.OutputEvent) error {
	var trades []matching.OutputEvent
	for _, e := range events {
		if e.Kind == matching.EventTrade {
			trades = append(trades, e)
		}
	}

	if len(trades) <= batchPersistSize {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("fixture: begin: %w", err)
		}
		if err := PersistTrades(tx, log, trades); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	var wg sync.WaitGroup
	errs := make([]error, (len(trades)+batchPersistSize-1)/batchPersistSize)

	for i, chunk := 0, 0; i < len(trades); i, chunk = i+batchPersistSize, chunk+1 {
		end := i + batchPersistSize
		if end > len(trades) {
			end = len(trades)
		}

		wg.Add(1)
		go func(sb, se, idx int) {
			defer wg.Done()

			tx, err := db.Begin()
			if err != nil {
				errs[idx] = fmt.Errorf("fixture: begin batch %d: %w", idx, err)
				return
			}
			if err := PersistTrades(tx, log, trades[sb:se]); err != nil {
				tx.Rollback()
				errs[idx] = err
				return
			}
			errs[idx] = tx.Commit()
		}(i, end, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
