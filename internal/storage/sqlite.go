package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dkazmin/pvzbot/internal/domain"

	"github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER UNIQUE NOT NULL,
			role TEXT NOT NULL,
			rating REAL NOT NULL DEFAULT 0.0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			owner_id INTEGER NOT NULL,
			rating REAL NOT NULL DEFAULT 0.0,
			FOREIGN KEY (owner_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS shifts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			point_id INTEGER NOT NULL,
			date DATETIME NOT NULL,
			worker_id INTEGER,
			FOREIGN KEY (point_id) REFERENCES points(id),
			FOREIGN KEY (worker_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER NOT NULL,
			point_id INTEGER,
			worker_id INTEGER,
			rating REAL NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (author_id) REFERENCES users(id),
			FOREIGN KEY (point_id) REFERENCES points(id),
			FOREIGN KEY (worker_id) REFERENCES users(id),
			CHECK ((point_id IS NULL) != (worker_id IS NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_owner_id ON points(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_point_id ON shifts(point_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_point_id ON reviews(point_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_worker_id ON reviews(worker_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec %q: %w", m[:40], err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// === Users ===

func (s *Storage) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, role) VALUES (?, ?)`,
		u.TelegramID, u.Role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	u.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, telegram_id, role, rating, created_at FROM users WHERE telegram_id = ?`,
		telegramID,
	).Scan(&u.ID, &u.TelegramID, &u.Role, &u.Rating, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, telegram_id, role, rating, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.TelegramID, &u.Role, &u.Rating, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, telegram_id, role, rating, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Role, &u.Rating, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// === Points ===

func (s *Storage) CreatePoint(ctx context.Context, p *domain.Point) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO points (name, address, owner_id) VALUES (?, ?, ?)`,
		p.Name, p.Address, p.OwnerID,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.ID = id
	return nil
}

func (s *Storage) GetPoint(ctx context.Context, id int64) (*domain.Point, error) {
	p := &domain.Point{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, owner_id, rating FROM points WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.Address, &p.OwnerID, &p.Rating)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Storage) ListPoints(ctx context.Context) ([]*domain.Point, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, address, owner_id, rating FROM points ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*domain.Point
	for rows.Next() {
		p := &domain.Point{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.OwnerID, &p.Rating); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *Storage) UpdatePoint(ctx context.Context, id int64, name, address string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE points SET name = ?, address = ? WHERE id = ?`,
		name, address, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePoint removes a point unless shifts still reference it. The
// existence check and the delete run in one transaction so a shift
// created in between cannot be orphaned.
func (s *Storage) DeletePoint(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var shiftCount int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shifts WHERE point_id = ?`, id,
	).Scan(&shiftCount); err != nil {
		return err
	}
	if shiftCount > 0 {
		return ErrConflict
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// === Shifts ===

func (s *Storage) CreateShift(ctx context.Context, sh *domain.Shift) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM points WHERE id = ?`, sh.PointID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO shifts (point_id, date, worker_id) VALUES (?, ?, ?)`,
		sh.PointID, sh.Date, sh.WorkerID,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	sh.ID = id
	return tx.Commit()
}

func (s *Storage) GetShift(ctx context.Context, id int64) (*domain.Shift, error) {
	sh := &domain.Shift{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, point_id, date, worker_id FROM shifts WHERE id = ?`,
		id,
	).Scan(&sh.ID, &sh.PointID, &sh.Date, &sh.WorkerID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *Storage) ListShifts(ctx context.Context) ([]*domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, point_id, date, worker_id FROM shifts ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []*domain.Shift
	for rows.Next() {
		sh := &domain.Shift{}
		if err := rows.Scan(&sh.ID, &sh.PointID, &sh.Date, &sh.WorkerID); err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (s *Storage) UpdateShiftDate(ctx context.Context, id int64, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shifts SET date = ? WHERE id = ?`,
		date, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteShift(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// === Reviews ===

// CreateReview inserts a review and recomputes the target's aggregate
// rating in the same transaction, so no reader can observe the review
// without its aggregate or vice versa.
func (s *Storage) CreateReview(ctx context.Context, r *domain.Review) error {
	targetTable, targetCol := "points", "point_id"
	var targetID int64
	switch {
	case r.PointID != nil:
		targetID = *r.PointID
	case r.WorkerID != nil:
		targetTable, targetCol = "users", "worker_id"
		targetID = *r.WorkerID
	default:
		return fmt.Errorf("review has no target")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, targetTable)
	if err := tx.QueryRowContext(ctx, q, targetID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (author_id, point_id, worker_id, rating, comment) VALUES (?, ?, ?, ?, ?)`,
		r.AuthorID, r.PointID, r.WorkerID, r.Rating, r.Comment,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	r.ID = id
	r.CreatedAt = time.Now()

	q = fmt.Sprintf(`SELECT rating FROM reviews WHERE %s = ?`, targetCol)
	rows, err := tx.QueryContext(ctx, q, targetID)
	if err != nil {
		return err
	}
	var ratings []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		ratings = append(ratings, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	q = fmt.Sprintf(`UPDATE %s SET rating = ? WHERE id = ?`, targetTable)
	if _, err := tx.ExecContext(ctx, q, domain.MeanRating(ratings), targetID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListReviewsForPoint returns reviews targeting a point, oldest first.
func (s *Storage) ListReviewsForPoint(ctx context.Context, pointID int64) ([]*domain.Review, error) {
	return s.listReviews(ctx, `point_id`, pointID)
}

// ListReviewsForWorker returns reviews targeting a worker, oldest first.
func (s *Storage) ListReviewsForWorker(ctx context.Context, workerID int64) ([]*domain.Review, error) {
	return s.listReviews(ctx, `worker_id`, workerID)
}

func (s *Storage) listReviews(ctx context.Context, col string, targetID int64) ([]*domain.Review, error) {
	q := fmt.Sprintf(
		`SELECT id, author_id, point_id, worker_id, rating, comment, created_at
		 FROM reviews WHERE %s = ? ORDER BY created_at, id`, col)
	rows, err := s.db.QueryContext(ctx, q, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r := &domain.Review{}
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.PointID, &r.WorkerID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
