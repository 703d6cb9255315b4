package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Store vends repositories bound to one database handle. Inside WithinTx the
// handle is the transaction, so every repository obtained from the inner
// Store shares it.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Votes() VoteRepository
	Comments() CommentRepository
	// WithinTx runs fn in a transaction, committing when fn returns nil and
	// rolling back on error or panic.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db     *gorm.DB
	txOpts *sql.TxOptions
}

// NewStore wraps db. txOpts may be nil to use the driver default isolation.
func NewStore(db *gorm.DB, txOpts *sql.TxOptions) Store {
	return &gormStore{db: db, txOpts: txOpts}
}

func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *gormStore) Posts() PostRepository       { return NewPostRepository(s.db) }
func (s *gormStore) Votes() VoteRepository       { return NewVoteRepository(s.db) }
func (s *gormStore) Comments() CommentRepository { return NewCommentRepository(s.db) }

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	var opts []*sql.TxOptions
	if s.txOpts != nil {
		opts = append(opts, s.txOpts)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, txOpts: s.txOpts})
	}, opts...)
}
