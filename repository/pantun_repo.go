package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pantun-api/models"
)

// ErrInvalidSampiranCount is returned when the sampiran count is neither "1" nor "2".
var ErrInvalidSampiranCount = errors.New("jumlahSampiran must be \"1\" or \"2\"")

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PantunRepo struct {
	DB DB
}

func NewPantunRepo(db DB) *PantunRepo { return &PantunRepo{DB: db} }

const pantunColumns = `id, sampiran_1, sampiran_2, content_1, content_2, "createdAt", "updatedAt"`

const schemaDDL = `CREATE TABLE IF NOT EXISTS "pantunPosts" (
	id          SERIAL PRIMARY KEY,
	sampiran_1  TEXT NOT NULL,
	sampiran_2  TEXT,
	content_1   TEXT NOT NULL,
	content_2   TEXT,
	"createdAt" TIMESTAMPTZ NOT NULL DEFAULT now(),
	"updatedAt" TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the pantunPosts table when it does not exist yet.
func (r *PantunRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PantunRepo) Count(ctx context.Context) (int, error) {
	var cnt int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM "pantunPosts"`).Scan(&cnt); err != nil {
		return 0, fmt.Errorf("count pantun: %w", err)
	}
	return cnt, nil
}

func (r *PantunRepo) ListAll(ctx context.Context) ([]models.PantunPost, error) {
	return r.query(ctx, "list pantun",
		`SELECT `+pantunColumns+` FROM "pantunPosts" ORDER BY id`)
}

func (r *PantunRepo) GetByID(ctx context.Context, id int) ([]models.PantunPost, error) {
	return r.query(ctx, "get pantun",
		`SELECT `+pantunColumns+` FROM "pantunPosts" WHERE id=$1`, id)
}

// GetBySampiranEnding matches on the trailing substring of the sampiran
// fields. With count "1" either field may match, with "2" both must.
// right() keeps % and _ in the ending literal, unlike LIKE.
func (r *PantunRepo) GetBySampiranEnding(ctx context.Context, count, ending string) ([]models.PantunPost, error) {
	var where string
	switch count {
	case "1":
		where = `right(sampiran_1, length($1::text)) = $1::text OR right(sampiran_2, length($1::text)) = $1::text`
	case "2":
		where = `right(sampiran_1, length($1::text)) = $1::text AND right(sampiran_2, length($1::text)) = $1::text`
	default:
		return nil, ErrInvalidSampiranCount
	}
	return r.query(ctx, "get pantun by ending",
		`SELECT `+pantunColumns+` FROM "pantunPosts" WHERE `+where+` ORDER BY id`, ending)
}

func (r *PantunRepo) Create(ctx context.Context, req models.CreatePantunReq) (*models.PantunPost, error) {
	row := r.DB.QueryRow(ctx,
		`INSERT INTO "pantunPosts"(sampiran_1, sampiran_2, content_1, content_2)
		 VALUES ($1,$2,$3,$4)
		 RETURNING `+pantunColumns,
		*req.Sampiran1, req.Sampiran2, *req.Content1, req.Content2,
	)
	p, err := scanPantun(row)
	if err != nil {
		return nil, fmt.Errorf("create pantun: %w", err)
	}
	return p, nil
}

// Update overwrites the text fields and refreshes updatedAt. The result is
// empty when no row has the given id.
func (r *PantunRepo) Update(ctx context.Context, req models.UpdatePantunReq) ([]models.PantunPost, error) {
	return r.query(ctx, "update pantun",
		`UPDATE "pantunPosts"
		 SET sampiran_1=$2, sampiran_2=$3, content_1=$4, content_2=$5, "updatedAt"=now()
		 WHERE id=$1
		 RETURNING `+pantunColumns,
		*req.ID, *req.Sampiran1, req.Sampiran2, *req.Content1, req.Content2,
	)
}

// Delete reports whether a row was removed.
func (r *PantunRepo) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM "pantunPosts" WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete pantun: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PantunRepo) query(ctx context.Context, op, sql string, args ...any) ([]models.PantunPost, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []models.PantunPost{}
	for rows.Next() {
		p, err := scanPantun(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanPantun(row pgx.Row) (*models.PantunPost, error) {
	var p models.PantunPost
	if err := row.Scan(&p.ID, &p.Sampiran1, &p.Sampiran2, &p.Content1, &p.Content2, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
