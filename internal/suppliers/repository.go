package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

const (
	selectColumns = `id, company_name, contact_name, phone, email, created_at, updated_at`

	listQuery   = `SELECT ` + selectColumns + ` FROM ` + TableName + ` ORDER BY created_at DESC, id DESC`
	getQuery    = `SELECT ` + selectColumns + ` FROM ` + TableName + ` WHERE id = $1 LIMIT 1`
	insertQuery = `INSERT INTO ` + TableName + ` (company_name, contact_name, phone, email) VALUES ($1, $2, $3, $4) RETURNING id`
	updateQuery = `UPDATE ` + TableName + ` SET company_name = $1, contact_name = $2, phone = $3, email = $4, updated_at = NOW() WHERE id = $5`
	deleteQuery = `DELETE FROM ` + TableName + ` WHERE id = $1`
	existsQuery = `SELECT EXISTS (SELECT 1 FROM ` + TableName + ` WHERE id = $1)`
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGStore is the PostgreSQL Store built on pgx. Each method issues one
// statement; created_at and updated_at are stamped by the database.
type PGStore struct {
	db     DBTX
	tracer trace.Tracer
}

// NewPGStore wraps db, typically a *pgxpool.Pool.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db, tracer: otel.Tracer("github.com/odyssey-erp/suppliers-api/internal/suppliers")}
}

func (s *PGStore) List(ctx context.Context) (result []Supplier, err error) {
	ctx, span := s.tracer.Start(ctx, "suppliers.List")
	defer func() { endSpan(span, err) }()

	rows, err := s.db.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("suppliers: list: %w", err)
	}
	defer rows.Close()

	result = make([]Supplier, 0)
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.CompanyName, &sup.ContactName, &sup.Phone, &sup.Email, &sup.CreatedAt, &sup.UpdatedAt); err != nil {
			return nil, fmt.Errorf("suppliers: list scan: %w", err)
		}
		result = append(result, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("suppliers: list rows: %w", err)
	}
	span.SetAttributes(attribute.Int("suppliers.count", len(result)))
	return result, nil
}

func (s *PGStore) Get(ctx context.Context, id int64) (sup Supplier, err error) {
	ctx, span := s.tracer.Start(ctx, "suppliers.Get", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer func() { endSpan(span, err) }()

	err = s.db.QueryRow(ctx, getQuery, id).Scan(&sup.ID, &sup.CompanyName, &sup.ContactName, &sup.Phone, &sup.Email, &sup.CreatedAt, &sup.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, shared.ErrNotFound
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("suppliers: get %d: %w", id, err)
	}
	return sup, nil
}

func (s *PGStore) Create(ctx context.Context, in Input) (id int64, err error) {
	ctx, span := s.tracer.Start(ctx, "suppliers.Create")
	defer func() { endSpan(span, err) }()

	in = in.Sanitized()
	if err := s.db.QueryRow(ctx, insertQuery, in.CompanyName, in.ContactName, in.Phone, in.Email).Scan(&id); err != nil {
		return 0, fmt.Errorf("suppliers: create: %w", err)
	}
	span.SetAttributes(attribute.Int64("supplier.id", id))
	return id, nil
}

func (s *PGStore) Update(ctx context.Context, id int64, in Input) (err error) {
	ctx, span := s.tracer.Start(ctx, "suppliers.Update", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer func() { endSpan(span, err) }()

	in = in.Sanitized()
	if _, err := s.db.Exec(ctx, updateQuery, in.CompanyName, in.ContactName, in.Phone, in.Email, id); err != nil {
		return fmt.Errorf("suppliers: update %d: %w", id, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "suppliers.Delete", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer func() { endSpan(span, err) }()

	if _, err := s.db.Exec(ctx, deleteQuery, id); err != nil {
		return fmt.Errorf("suppliers: delete %d: %w", id, err)
	}
	return nil
}

func (s *PGStore) Exists(ctx context.Context, id int64) (exists bool, err error) {
	ctx, span := s.tracer.Start(ctx, "suppliers.Exists", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.db.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("suppliers: exists %d: %w", id, err)
	}
	return exists, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
