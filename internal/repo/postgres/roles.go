package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizhub/accounts/internal/cache"
	"github.com/quizhub/accounts/internal/domain/role"
	"github.com/quizhub/accounts/internal/observability"
)

// RolesRepo is the single place role names get resolved, always
// case-insensitively. The catalog is tiny and hot (every registration and
// role assignment hits it), so hits are served from a short TTL cache.
type RolesRepo struct {
	pool  *pgxpool.Pool
	prom  *observability.Prom
	cache *cache.Cache
}

func NewRolesRepo(pool *pgxpool.Pool, prom *observability.Prom) *RolesRepo {
	return &RolesRepo{
		pool:  pool,
		prom:  prom,
		cache: cache.New(30 * time.Second),
	}
}

func (r *RolesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (role.Role, error) {
	key := "role:" + strings.ToLower(name)

	if v, ok := r.cache.Get(key); ok {
		if cached, ok := v.(role.Role); ok {
			return cached, nil
		}
	}

	var found role.Role

	err := r.observe("roles.get_by_name", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name FROM roles WHERE LOWER(name) = LOWER($1)`,
			name,
		).Scan(&found.ID, &found.Name)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role.Role{}, role.ErrNotFound
		}

		return role.Role{}, err
	}

	r.cache.Set(key, found)

	return found, nil
}

func (r *RolesRepo) List(ctx context.Context) ([]role.Role, error) {
	var roles []role.Role

	err := r.observe("roles.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var rl role.Role

			if err := rows.Scan(&rl.ID, &rl.Name); err != nil {
				return err
			}

			roles = append(roles, rl)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return roles, nil
}
