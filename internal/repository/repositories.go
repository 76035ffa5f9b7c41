package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories contains all repositories
type Repositories struct {
	IdentityRepo IdentityRepository
}

// NewRepositories creates all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		IdentityRepo: NewIdentityRepository(pool),
	}
}
