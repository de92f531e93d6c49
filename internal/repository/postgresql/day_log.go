package postgresql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hoursync/hoursync-backend-go/internal/domain/attendance"
	"github.com/hoursync/hoursync-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type dayLogRepository struct {
	db *database.DB
}

func NewDayLogRepository(db *database.DB) attendance.DayLogRepository {
	return &dayLogRepository{db: db}
}

// slotColumns maps each punch type to its time and justification columns.
var slotColumns = map[attendance.PunchType][2]string{
	attendance.PunchMorningIn:    {"morning_in", "morning_in_justification_url"},
	attendance.PunchMorningOut:   {"morning_out", "morning_out_justification_url"},
	attendance.PunchAfternoonIn:  {"afternoon_in", "afternoon_in_justification_url"},
	attendance.PunchAfternoonOut: {"afternoon_out", "afternoon_out_justification_url"},
}

const dayLogColumns = `id, employee_id, date,
	morning_in, morning_in_justification_url,
	morning_out, morning_out_justification_url,
	afternoon_in, afternoon_in_justification_url,
	afternoon_out, afternoon_out_justification_url,
	created_at, updated_at`

func scanDayLog(row pgx.Row) (attendance.DayLog, error) {
	var d attendance.DayLog
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.Date,
		&d.MorningIn.Time, &d.MorningIn.JustificationURL,
		&d.MorningOut.Time, &d.MorningOut.JustificationURL,
		&d.AfternoonIn.Time, &d.AfternoonIn.JustificationURL,
		&d.AfternoonOut.Time, &d.AfternoonOut.JustificationURL,
		&d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Get implements attendance.DayLogRepository.
func (r *dayLogRepository) Get(ctx context.Context, employeeID string, date time.Time) (attendance.DayLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dayLogColumns + ` FROM day_logs WHERE employee_id = $1 AND date = $2`

	log, err := scanDayLog(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.DayLog{}, attendance.ErrDayLogNotFound
		}
		return attendance.DayLog{}, fmt.Errorf("failed to get day log for employee %s on %s: %w", employeeID, date.Format("2006-01-02"), err)
	}
	return log, nil
}

// Save implements attendance.DayLogRepository.
// On conflict a slot keeps its stored value when it already holds a time or a justification.
func (r *dayLogRepository) Save(ctx context.Context, log attendance.DayLog) (attendance.DayLog, error) {
	q := GetQuerier(ctx, r.db)

	sets := make([]string, 0, len(attendance.PunchTypes)*2)
	for _, p := range attendance.PunchTypes {
		cols := slotColumns[p]
		empty := fmt.Sprintf("day_logs.%s IS NULL AND day_logs.%s IS NULL", cols[0], cols[1])
		for _, col := range cols {
			sets = append(sets, fmt.Sprintf("%s = CASE WHEN %s THEN EXCLUDED.%s ELSE day_logs.%s END", col, empty, col, col))
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO day_logs (
			employee_id, date,
			morning_in, morning_in_justification_url,
			morning_out, morning_out_justification_url,
			afternoon_in, afternoon_in_justification_url,
			afternoon_out, afternoon_out_justification_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			%s,
			updated_at = NOW()
		RETURNING %s
	`, strings.Join(sets, ",\n\t\t\t"), dayLogColumns)

	saved, err := scanDayLog(q.QueryRow(ctx, query,
		log.EmployeeID, log.Date,
		log.MorningIn.Time, log.MorningIn.JustificationURL,
		log.MorningOut.Time, log.MorningOut.JustificationURL,
		log.AfternoonIn.Time, log.AfternoonIn.JustificationURL,
		log.AfternoonOut.Time, log.AfternoonOut.JustificationURL,
	))
	if err != nil {
		return attendance.DayLog{}, fmt.Errorf("failed to save day log: %w", err)
	}
	return saved, nil
}

// SetSlots implements attendance.DayLogRepository.
func (r *dayLogRepository) SetSlots(ctx context.Context, employeeID string, date time.Time, slots map[attendance.PunchType]*string) (attendance.DayLog, error) {
	if len(slots) == 0 {
		return r.Get(ctx, employeeID, date)
	}
	q := GetQuerier(ctx, r.db)

	punches := make([]attendance.PunchType, 0, len(slots))
	for p := range slots {
		if _, ok := slotColumns[p]; !ok {
			return attendance.DayLog{}, attendance.ErrInvalidPunchType
		}
		punches = append(punches, p)
	}
	sort.Slice(punches, func(i, j int) bool { return punches[i] < punches[j] })

	insertCols := []string{"employee_id", "date"}
	placeholders := []string{"$1", "$2"}
	args := []interface{}{employeeID, date}
	sets := make([]string, 0, len(punches)*2)
	for _, p := range punches {
		cols := slotColumns[p]
		args = append(args, slots[p])
		insertCols = append(insertCols, cols[0])
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		// A corrected slot always holds a time, never a justification.
		sets = append(sets,
			fmt.Sprintf("%s = EXCLUDED.%s", cols[0], cols[0]),
			fmt.Sprintf("%s = NULL", cols[1]),
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO day_logs (%s) VALUES (%s)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			%s,
			updated_at = NOW()
		RETURNING %s
	`, strings.Join(insertCols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "), dayLogColumns)

	saved, err := scanDayLog(q.QueryRow(ctx, query, args...))
	if err != nil {
		return attendance.DayLog{}, fmt.Errorf("failed to correct day log: %w", err)
	}
	return saved, nil
}

// ListByRange implements attendance.DayLogRepository.
func (r *dayLogRepository) ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.DayLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + dayLogColumns + `
		FROM day_logs
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list day logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.DayLog
	for rows.Next() {
		log, err := scanDayLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateEmpty implements attendance.DayLogRepository.
func (r *dayLogRepository) CreateEmpty(ctx context.Context, employeeIDs []string, date time.Time) (int64, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO day_logs (employee_id, date)
		SELECT UNNEST($1::text[]), $2::date
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, employeeIDs, date)
	if err != nil {
		return 0, fmt.Errorf("failed to provision day logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
