package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"puppytalk/internal/models"
	"puppytalk/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, pgUniqueViolation)
}

// isForeignKeyError checks if a DB error is a foreign key violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, pgForeignKeyViolation)
}

// violatedConstraint returns the constraint or column named by a unique
// violation, lower-cased.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.ToLower(pgErr.ConstraintName)
	}
	return strings.ToLower(err.Error())
}

// dbError classifies err. AppErrors pass through, unique violations become
// CONFLICT, FK violations CONSTRAINT_ERROR and everything else DB_ERROR.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case isUniqueConstraintError(err):
		return models.WrapError(models.CodeConflict, err)
	case isForeignKeyError(err):
		return models.WrapError(models.CodeConstraintError, err)
	default:
		return models.NewDBError(err)
	}
}

// notFoundOr maps gorm.ErrRecordNotFound to code and classifies anything else.
func notFoundOr(err error, code models.Code) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(code)
	}
	return dbError(err)
}

// base carries the per-table logger, latency histogram and tracing shared by
// every repository.
type base struct {
	db      *gorm.DB
	table   string
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

func newBase(db *gorm.DB, table string) base {
	return base{
		db:      db,
		table:   table,
		log:     observability.NewRepoLogger(table),
		metrics: observability.NewDatabaseMetrics(table),
	}
}

// begin opens a span and latency timer for one repository call. The returned
// func must be deferred with a pointer to the named error result.
func (b *base) begin(ctx context.Context, op string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := observability.StartRepositorySpan(ctx, b.table, op)
	return ctx, func(errp *error) {
		b.metrics.ObserveQuery(op, start)
		b.finish(ctx, span, op, *errp)
	}
}

func (b *base) finish(ctx context.Context, span trace.Span, op string, err error) {
	switch models.CodeOf(err) {
	case models.CodeDBError, models.CodeInternalServerError:
		b.log.LogError(ctx, err, op)
		observability.EndSpan(span, err)
	default:
		observability.EndSpan(span, nil)
	}
}

// conn returns the DB bound to ctx.
func (b *base) conn(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx)
}

// liveAuthorExists limits an update of posts to those whose author has not
// withdrawn.
const liveAuthorExists = "EXISTS (SELECT 1 FROM users WHERE users.id = posts.user_id AND users.deleted_at IS NULL)"

// liveAuthor joins the author row so content of withdrawn users is hidden.
func liveAuthor(table string) string {
	return "JOIN users ON users.id = " + table + ".user_id AND users.deleted_at IS NULL"
}
