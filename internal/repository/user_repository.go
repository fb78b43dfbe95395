package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

var userColumns = []string{
	"id", "username", "email", "password_hash", "full_name", "role", "department", "is_active", "created_at",
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Role         string    `db:"role"`
	Department   string    `db:"department"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Role:         domain.Role(r.Role),
		Department:   r.Department,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
	}
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query, args, err := psql.Insert("users").
		Columns("username", "email", "password_hash", "full_name", "role", "department", "is_active", "created_at").
		Values(user.Username, user.Email, user.PasswordHash, user.FullName, string(user.Role), user.Department, user.IsActive, user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query, args, err := psql.Update("users").
		Set("password_hash", passwordHash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user: %w", err)
	}
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *userRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}
	var row userRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		return nil, notFound(err)
	}
	user := row.toDomain()
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, psql.Select(userColumns...).From("users").OrderBy("role", "full_name"))
}

func (r *userRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]domain.User, error) {
	values := make([]string, 0, len(roles))
	for _, role := range roles {
		values = append(values, string(role))
	}
	return r.list(ctx, psql.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"role": values, "is_active": true}).
		OrderBy("full_name"))
}

func (r *userRepository) list(ctx context.Context, qb squirrel.SelectBuilder) ([]domain.User, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}
	var rows []userRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
