package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Clock is the trusted source of the current wall-clock time.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// SystemClock reads the process clock and converts it to loc.
type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now(ctx context.Context) (time.Time, error) {
	return time.Now().In(c.loc), nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DatabaseClock asks PostgreSQL for the time so every API instance agrees on it.
type DatabaseClock struct {
	db  rowQuerier
	loc *time.Location
}

func NewDatabaseClock(db rowQuerier, loc *time.Location) *DatabaseClock {
	if loc == nil {
		loc = time.Local
	}
	return &DatabaseClock{db: db, loc: loc}
}

func (c *DatabaseClock) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := c.db.QueryRow(ctx, "SELECT now()").Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("failed to read database time: %w", err)
	}
	return now.In(c.loc), nil
}

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now(ctx context.Context) (time.Time, error) {
	return f(), nil
}
