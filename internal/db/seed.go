package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizhub/accounts/internal/config"
	"github.com/quizhub/accounts/internal/domain/role"
	"github.com/quizhub/accounts/internal/security"
)

// EnsureSystemRoles upserts the fixed role catalog. Re-checked on every
// startup so a fresh database always carries the four system roles.
func EnsureSystemRoles(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	for _, name := range role.SystemRoles() {
		var dummy int64

		err := pool.QueryRow(ctx, `SELECT id FROM roles WHERE LOWER(name) = LOWER($1)`, name).Scan(&dummy)

		if err == nil {
			continue
		}

		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		_, err = pool.Exec(ctx, `INSERT INTO roles (name) VALUES ($1)`, name)

		if err != nil {
			return err
		}

		log.Info("seeded system role", "role", name)
	}

	return nil
}

// EnsureAdminUser creates the bootstrap admin account from configured
// credentials. Skipped when no admin credentials are configured; a no-op
// when the account already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var adminRoleID int64

	err = pool.QueryRow(ctx, `SELECT id FROM roles WHERE LOWER(name) = LOWER($1)`, role.Admin).Scan(&adminRoleID)

	if err != nil {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (is_anonymous, created_at, name, email, password_hash, role_id)
		VALUES (FALSE, $1, $2, $3, $4, $5)`,
		time.Now().UTC(), cfg.AdminName, cfg.AdminEmail, hash, adminRoleID,
	)

	if err != nil {
		return err
	}

	log.Info("seeded admin user", "email", cfg.AdminEmail)

	return nil
}
