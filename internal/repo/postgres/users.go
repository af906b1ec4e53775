package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizhub/accounts/internal/domain/role"
	"github.com/quizhub/accounts/internal/domain/user"
	"github.com/quizhub/accounts/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

const userColumns = `u.id, u.is_anonymous, u.created_at, u.name, u.email, u.password_hash,
       u.date_of_birth, u.role_id, r.id, r.name`

const userFromJoin = `FROM users u LEFT JOIN roles r ON r.id = u.role_id`

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u        user.User
		roleID   *int64
		roleName *string
	)

	err := row.Scan(
		&u.ID,
		&u.IsAnonymous,
		&u.CreatedAt,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.DateOfBirth,
		&u.RoleID,
		&roleID,
		&roleName,
	)

	if err != nil {
		return user.User{}, err
	}

	if roleID != nil && roleName != nil {
		u.Role = &role.Role{ID: *roleID, Name: *roleName}
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` `+userFromJoin+` WHERE u.email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` `+userFromJoin+` WHERE u.id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (is_anonymous, created_at, name, email, password_hash, date_of_birth, role_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			u.IsAnonymous, u.CreatedAt, u.Name, u.Email, u.PasswordHash, u.DateOfBirth, u.RoleID,
		).Scan(&u.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrDuplicateEmail
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, userID, roleID int64) error {
	var tag pgconn.CommandTag

	err := r.observe("users.update_role", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `UPDATE users SET role_id = $1 WHERE id = $2`, roleID, userID)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var users []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+userColumns+` `+userFromJoin+` ORDER BY u.id`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)

			if err != nil {
				return err
			}

			users = append(users, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}
