package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

// DBTX is the part of pgx shared by pools and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is a DBTX that can open transactions, such as *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the unit of work handed to services. Repositories obtained from a
// Store passed into WithinTx share one transaction.
type Store interface {
	Users() UserRepository
	Tickets() TicketRepository
	Comments() CommentRepository
	History() TicketHistoryRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type pgStore struct {
	db     DBTX
	pool   TxBeginner
	inTx   bool
	users  UserRepository
	ticket TicketRepository
	notes  CommentRepository
	log    TicketHistoryRepository
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool TxBeginner) Store {
	return newPgStore(pool, pool, false)
}

func newPgStore(db DBTX, pool TxBeginner, inTx bool) *pgStore {
	return &pgStore{
		db:     db,
		pool:   pool,
		inTx:   inTx,
		users:  &userRepository{db: db},
		ticket: &ticketRepository{db: db},
		notes:  &commentRepository{db: db},
		log:    &ticketHistoryRepository{db: db},
	}
}

func (s *pgStore) Users() UserRepository            { return s.users }
func (s *pgStore) Tickets() TicketRepository        { return s.ticket }
func (s *pgStore) Comments() CommentRepository      { return s.notes }
func (s *pgStore) History() TicketHistoryRepository { return s.log }

// WithinTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back on error or panic. Nested calls reuse the
// outer transaction.
func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()
	return fn(newPgStore(tx, s.pool, true))
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
