package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muirkirkangling/memberportal/internal/domain/member"
	"github.com/muirkirkangling/memberportal/internal/observability"
	"github.com/muirkirkangling/memberportal/internal/repo"
)

type MembersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMembersRepo(pool *pgxpool.Pool, prom *observability.Prom) *MembersRepo {
	return &MembersRepo{pool: pool, prom: prom}
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func (r *MembersRepo) GetByEmail(ctx context.Context, email string) (member.Member, error) {
	var m member.Member

	err := r.observe("members.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, last_name, email, password_hash, permit_type, renewed, created_at, updated_at
	         FROM members
	         WHERE email = $1`,
			email,
		).Scan(
			&m.ID,
			&m.FirstName,
			&m.LastName,
			&m.Email,
			&m.PasswordHash,
			&m.PermitType,
			&m.Renewed,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, repo.ErrMemberNotFound
		}

		return member.Member{}, err
	}
	return m, nil
}

// Create inserts a new member. The unique constraint on email is the real
// duplicate guard; the handler's pre-check is only a friendlier error path.
func (r *MembersRepo) Create(ctx context.Context, firstName, lastName, email, passwordHash string) (member.Member, error) {
	now := time.Now().UTC()

	m := member.Member{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		PermitType:   member.PermitNone,
		Renewed:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("members.create", func() error {
		_, e := r.pool.Exec(
			ctx,
			`INSERT INTO members (id, first_name, last_name, email, password_hash, permit_type, renewed, created_at, updated_at)
	         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.ID, m.FirstName, m.LastName, m.Email, m.PasswordHash, string(m.PermitType), m.Renewed, m.CreatedAt, m.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return member.Member{}, repo.ErrEmailTaken
		}

		return member.Member{}, err
	}

	return m, nil
}

// CountRenewed counts members whose renewal flag is set for the current
// period. The flag itself is written by the payment confirmation flow.
func (r *MembersRepo) CountRenewed(ctx context.Context) (int, error) {
	var count int

	err := r.observe("members.count_renewed", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT COUNT(*) FROM members WHERE renewed = TRUE`,
		).Scan(&count)
	})

	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *MembersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}
