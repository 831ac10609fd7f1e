package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements database.Store using PostgreSQL. Bot tokens are encrypted
// with tokenKey before they touch a row and decrypted on the way out.
type Store struct {
	pool     *pgxpool.Pool
	tokenKey []byte
}

// NewStore creates a new Store backed by the given connection pool. tokenKey
// is the AES-256 key for bot credentials at rest.
func NewStore(pool *pgxpool.Pool, tokenKey []byte) *Store {
	return &Store{pool: pool, tokenKey: tokenKey}
}

type scannable interface {
	Scan(dest ...any) error
}
