package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hoursync/hoursync-backend-go/internal/pkg/database"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/identity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// accountRepository backs identity.LocalProvider.
type accountRepository struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) identity.AccountStore {
	return &accountRepository{db: db}
}

// Create implements identity.AccountStore.
func (a *accountRepository) Create(ctx context.Context, account identity.Account, passwordHash string) (identity.Account, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO accounts (id, email, display_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, display_name, disabled, created_at
	`

	var created identity.Account
	err := q.QueryRow(ctx, query, account.ID, account.Email, account.DisplayName, passwordHash).Scan(
		&created.ID, &created.Email, &created.DisplayName, &created.Disabled, &created.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return identity.Account{}, identity.ErrEmailTaken
		}
		return identity.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

// GetByEmail implements identity.AccountStore.
func (a *accountRepository) GetByEmail(ctx context.Context, email string) (identity.Account, string, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, email, display_name, disabled, created_at, password_hash
		FROM accounts
		WHERE email = $1
	`

	var (
		account identity.Account
		hash    string
	)
	err := q.QueryRow(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.DisplayName, &account.Disabled, &account.CreatedAt, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Account{}, "", identity.ErrAccountNotFound
		}
		return identity.Account{}, "", fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, hash, nil
}

// GetByID implements identity.AccountStore.
func (a *accountRepository) GetByID(ctx context.Context, id string) (identity.Account, string, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, email, display_name, disabled, created_at, password_hash
		FROM accounts
		WHERE id = $1
	`

	var (
		account identity.Account
		hash    string
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.DisplayName, &account.Disabled, &account.CreatedAt, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Account{}, "", identity.ErrAccountNotFound
		}
		return identity.Account{}, "", fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return account, hash, nil
}

// SetPasswordHash implements identity.AccountStore.
func (a *accountRepository) SetPasswordHash(ctx context.Context, id string, passwordHash string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to set password of account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

// Update implements identity.AccountStore.
func (a *accountRepository) Update(ctx context.Context, id string, params identity.UpdateAccountParams) error {
	q := GetQuerier(ctx, a.db)

	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	if params.Email != nil {
		args = append(args, *params.Email)
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", len(args)))
	}
	if params.DisplayName != nil {
		args = append(args, *params.DisplayName)
		setClauses = append(setClauses, fmt.Sprintf("display_name = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d", strings.Join(setClauses, ", "), len(args))
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return identity.ErrEmailTaken
		}
		return fmt.Errorf("failed to update account %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

// SetDisabled implements identity.AccountStore.
func (a *accountRepository) SetDisabled(ctx context.Context, id string, disabled bool) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE accounts SET disabled = $1, updated_at = NOW() WHERE id = $2`, disabled, id)
	if err != nil {
		return fmt.Errorf("failed to set account %s disabled: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}
