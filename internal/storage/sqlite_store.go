package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ksakurai/memoplan/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id                      TEXT PRIMARY KEY,
	title                   TEXT NOT NULL,
	kind                    TEXT NOT NULL,
	created_at              TEXT NOT NULL,
	deadline                TEXT,
	goal_target             INTEGER NOT NULL DEFAULT 0,
	goal_period             TEXT NOT NULL DEFAULT '',
	location_preference     TEXT NOT NULL DEFAULT '',
	time_spent_min          INTEGER NOT NULL DEFAULT 0,
	completion_state        TEXT NOT NULL DEFAULT '',
	completions_this_period INTEGER NOT NULL DEFAULT 0,
	period_start            TEXT,
	importance              TEXT NOT NULL DEFAULT '',
	genre                   TEXT NOT NULL DEFAULT '',
	session_duration_min    INTEGER NOT NULL DEFAULT 0,
	total_duration_min      INTEGER NOT NULL DEFAULT 0,
	last_activity           TEXT,
	coord_x                 REAL,
	coord_y                 REAL
);

CREATE TABLE IF NOT EXISTS day_states (
	date        TEXT PRIMARY KEY,
	accepted    TEXT NOT NULL,
	skipped     TEXT NOT NULL,
	suggestions TEXT NOT NULL,
	gaps        TEXT NOT NULL,
	schedule    TEXT NOT NULL,
	day_gaps    TEXT NOT NULL DEFAULT '[]',
	day_events  TEXT NOT NULL DEFAULT '[]'
);
`

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'memoplan init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case "day_start":
			settings.DayStart = value
		case "day_end":
			settings.DayEnd = value
		case "default_session_min":
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultSessionMin); err != nil {
				return Settings{}, fmt.Errorf("parsing default_session_min: %w", err)
			}
		}
		count++
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec("day_start", settings.DayStart); err != nil {
		return err
	}
	if _, err := stmt.Exec("day_end", settings.DayEnd); err != nil {
		return err
	}
	if _, err := stmt.Exec("default_session_min", fmt.Sprintf("%d", settings.DefaultSessionMin)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) AddTask(task models.Task) error {
	return s.UpdateTask(task)
}

const taskColumns = `id, title, kind, created_at, deadline, goal_target, goal_period,
	location_preference, time_spent_min, completion_state, completions_this_period,
	period_start, importance, genre, session_duration_min, total_duration_min,
	last_activity, coord_x, coord_y`

func (s *SQLiteStore) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return models.Task{}, fmt.Errorf("task not found: %s", id)
	}
	return task, err
}

func (s *SQLiteStore) GetAllTasks() ([]models.Task, error) {
	rows, err := s.db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var createdAt string
	var deadline, periodStart, lastActivity sql.NullString
	var goalTarget int
	var goalPeriod string
	var coordX, coordY sql.NullFloat64

	err := row.Scan(
		&t.ID, &t.Title, &t.Kind, &createdAt, &deadline, &goalTarget, &goalPeriod,
		&t.LocationPreference, &t.Status.TimeSpentMin, &t.Status.CompletionState,
		&t.Status.CompletionsThisPeriod, &periodStart, &t.Importance, &t.Genre,
		&t.SessionDurationMin, &t.TotalDurationMin, &lastActivity, &coordX, &coordY,
	)
	if err != nil {
		return models.Task{}, err
	}

	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.Task{}, fmt.Errorf("parsing created_at for task %s: %w", t.ID, err)
	}
	if t.Deadline, err = parseNullTime(deadline); err != nil {
		return models.Task{}, fmt.Errorf("parsing deadline for task %s: %w", t.ID, err)
	}
	if t.Status.PeriodStart, err = parseNullTime(periodStart); err != nil {
		return models.Task{}, fmt.Errorf("parsing period_start for task %s: %w", t.ID, err)
	}
	if t.LastActivity, err = parseNullTime(lastActivity); err != nil {
		return models.Task{}, fmt.Errorf("parsing last_activity for task %s: %w", t.ID, err)
	}

	if goalTarget > 0 {
		t.Goal = &models.RecurrenceGoal{TargetCount: goalTarget, Period: models.Period(goalPeriod)}
	}
	if coordX.Valid && coordY.Valid {
		t.Coord = &models.Coordinate{X: coordX.Float64, Y: coordY.Float64}
	}

	return t, nil
}

func (s *SQLiteStore) UpdateTask(task models.Task) error {
	var goalTarget int
	var goalPeriod string
	if task.Goal != nil {
		goalTarget = task.Goal.TargetCount
		goalPeriod = string(task.Goal.Period)
	}
	var coordX, coordY sql.NullFloat64
	if task.Coord != nil {
		coordX = sql.NullFloat64{Float64: task.Coord.X, Valid: true}
		coordY = sql.NullFloat64{Float64: task.Coord.Y, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Kind, task.CreatedAt.UTC().Format(time.RFC3339),
		formatNullTime(task.Deadline), goalTarget, goalPeriod,
		task.LocationPreference, task.Status.TimeSpentMin, task.Status.CompletionState,
		task.Status.CompletionsThisPeriod, formatNullTime(task.Status.PeriodStart),
		task.Importance, task.Genre, task.SessionDurationMin, task.TotalDurationMin,
		formatNullTime(task.LastActivity), coordX, coordY,
	)
	return err
}

func (s *SQLiteStore) DeleteTask(id string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) SaveDayState(state DayState) error {
	accepted, err := json.Marshal(state.Accepted)
	if err != nil {
		return fmt.Errorf("failed to serialize accepted suggestions: %w", err)
	}
	skipped, err := json.Marshal(state.Skipped)
	if err != nil {
		return fmt.Errorf("failed to serialize skipped memos: %w", err)
	}
	suggestions, err := json.Marshal(state.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to serialize suggestions: %w", err)
	}
	gaps, err := json.Marshal(state.Gaps)
	if err != nil {
		return fmt.Errorf("failed to serialize gaps: %w", err)
	}
	schedule, err := json.Marshal(state.Schedule)
	if err != nil {
		return fmt.Errorf("failed to serialize schedule: %w", err)
	}
	dayGaps, err := json.Marshal(state.DayGaps)
	if err != nil {
		return fmt.Errorf("failed to serialize day gaps: %w", err)
	}
	dayEvents, err := json.Marshal(state.DayEvents)
	if err != nil {
		return fmt.Errorf("failed to serialize day events: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO day_states (date, accepted, skipped, suggestions, gaps, schedule, day_gaps, day_events)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		state.Date, string(accepted), string(skipped), string(suggestions), string(gaps), string(schedule),
		string(dayGaps), string(dayEvents),
	)
	return err
}

func (s *SQLiteStore) GetDayState(date string) (DayState, error) {
	row := s.db.QueryRow(
		"SELECT date, accepted, skipped, suggestions, gaps, schedule, day_gaps, day_events FROM day_states WHERE date = ?",
		date,
	)

	var state DayState
	var accepted, skipped, suggestions, gaps, schedule, dayGaps, dayEvents string
	err := row.Scan(&state.Date, &accepted, &skipped, &suggestions, &gaps, &schedule, &dayGaps, &dayEvents)
	if err == sql.ErrNoRows {
		return DayState{}, fmt.Errorf("no day state found for date: %s", date)
	}
	if err != nil {
		return DayState{}, err
	}

	for _, pair := range []struct {
		raw string
		dst any
	}{
		{accepted, &state.Accepted},
		{skipped, &state.Skipped},
		{suggestions, &state.Suggestions},
		{gaps, &state.Gaps},
		{schedule, &state.Schedule},
		{dayGaps, &state.DayGaps},
		{dayEvents, &state.DayEvents},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dst); err != nil {
			return DayState{}, fmt.Errorf("failed to parse day state for %s: %w", date, err)
		}
	}

	return state, nil
}

func (s *SQLiteStore) DeleteDayState(date string) error {
	res, err := s.db.Exec("DELETE FROM day_states WHERE date = ?", date)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no day state found for date: %s", date)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
