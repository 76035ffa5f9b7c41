package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdentityRecord maps a verified email identity to a Telegram username and
// its group-membership verification state. Email is the unique merge key;
// the username, when present, is the sole authorization key.
type IdentityRecord struct {
	ID               string
	SubjectID        string
	Email            string
	TelegramUsername *string
	Added            bool
	InviteLink       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CountFilter is an immutable predicate set for count queries. A zero value
// counts every record; each field set to true (or non-nil) adds a constraint.
type CountFilter struct {
	HasUsername   bool
	Verified      bool
	HasInviteLink bool
	UpdatedSince  *time.Time
}

func (f CountFilter) whereClause() (string, []any) {
	var conds []string
	var args []any
	if f.HasUsername {
		conds = append(conds, "telegram_username IS NOT NULL")
	}
	if f.Verified {
		conds = append(conds, "added = TRUE")
	}
	if f.HasInviteLink {
		conds = append(conds, "invite_link IS NOT NULL")
	}
	if f.UpdatedSince != nil {
		args = append(args, *f.UpdatedSince)
		conds = append(conds, fmt.Sprintf("updated_at >= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type IdentityRepository interface {
	FindByUsername(ctx context.Context, username string) (*IdentityRecord, error)
	FindByEmail(ctx context.Context, email string) (*IdentityRecord, error)
	// UpsertInviteLink stores the invite URL on the record matching BOTH the
	// subject id and the email, guarding against cross-account writes. It
	// reports whether a record was updated.
	UpsertInviteLink(ctx context.Context, subjectID, email, url string) (bool, error)
	// MarkVerifiedByInviteLink flips the verification flag on exactly the
	// record holding the given invite URL, in a single atomic statement. At
	// join time the invite link is the only trustworthy correlation key.
	MarkVerifiedByInviteLink(ctx context.Context, url string) (bool, error)
	Count(ctx context.Context, filter CountFilter) (int, error)
	ListUsernames(ctx context.Context) ([]string, error)
}

type pgIdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &pgIdentityRepository{pool: pool}
}

const identityColumns = `id, user_id, email, telegram_username, added, invite_link, created_at, updated_at`

func (r *pgIdentityRepository) scanRecord(row pgx.Row) (*IdentityRecord, error) {
	rec := &IdentityRecord{}
	err := row.Scan(
		&rec.ID, &rec.SubjectID, &rec.Email, &rec.TelegramUsername,
		&rec.Added, &rec.InviteLink, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *pgIdentityRepository) FindByUsername(ctx context.Context, username string) (*IdentityRecord, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM auth_users WHERE LOWER(telegram_username) = LOWER($1)
		LIMIT 1
	`
	return r.scanRecord(r.pool.QueryRow(ctx, query, username))
}

func (r *pgIdentityRepository) FindByEmail(ctx context.Context, email string) (*IdentityRecord, error) {
	query := `
		SELECT ` + identityColumns + `
		FROM auth_users WHERE LOWER(email) = LOWER($1)
	`
	return r.scanRecord(r.pool.QueryRow(ctx, query, email))
}

func (r *pgIdentityRepository) UpsertInviteLink(ctx context.Context, subjectID, email, url string) (bool, error) {
	query := `
		UPDATE auth_users SET invite_link = $3, updated_at = NOW()
		WHERE user_id = $1 AND LOWER(email) = LOWER($2)
	`
	tag, err := r.pool.Exec(ctx, query, subjectID, email, url)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgIdentityRepository) MarkVerifiedByInviteLink(ctx context.Context, url string) (bool, error) {
	query := `
		UPDATE auth_users SET added = TRUE, updated_at = NOW()
		WHERE invite_link = $1
	`
	tag, err := r.pool.Exec(ctx, query, url)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgIdentityRepository) Count(ctx context.Context, filter CountFilter) (int, error) {
	where, args := filter.whereClause()
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM auth_users"+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pgIdentityRepository) ListUsernames(ctx context.Context) ([]string, error) {
	query := `
		SELECT LOWER(telegram_username)
		FROM auth_users WHERE telegram_username IS NOT NULL
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}
