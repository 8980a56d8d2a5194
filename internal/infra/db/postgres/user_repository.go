package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainuser "cabinrent/internal/domain/user"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, roles, created_at, updated_at`

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, domainuser.NormalizeEmail(email))
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name,
		password_hash = EXCLUDED.password_hash, roles = EXCLUDED.roles, updated_at = EXCLUDED.updated_at`,
		string(u.ID), u.Email, u.Name, u.PasswordHash, roles, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domainuser.ErrEmailAlreadyUsed
		}
		return fmt.Errorf("postgres: save user: %w", err)
	}
	return nil
}

func (r *UserRepository) one(ctx context.Context, sql string, arg any) (*domainuser.User, error) {
	var (
		u     domainuser.User
		id    string
		roles []string
	)
	err := conn(ctx, r.pool).QueryRow(ctx, sql, arg).Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainuser.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get user: %w", err)
	}
	u.ID = domainuser.ID(id)
	for _, role := range roles {
		u.Roles = append(u.Roles, domainuser.Role(role))
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
