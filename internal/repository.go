package internal

import (
	"database/sql"
	_ "embed"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

//go:embed sql/upsert_appeal.sql
var upsertAppealSQL string

//go:embed sql/list_appeals.sql
var listAppealsSQL string

//go:embed sql/last_synced.sql
var lastSyncedSQL string

type AppealsRepository interface {
	InsertAppeals(batch []models.Appeal) (int, error)
	ListAppeals(since time.Time) ([]models.Appeal, error)
	LastSynced() (*time.Time, error)
	Check() checks.Check
	Close() error
}

type sqliteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewAppealsRepository(db *sql.DB) AppealsRepository {
	return &sqliteRepository{
		db:  db,
		now: time.Now,
	}
}

func (repo *sqliteRepository) InsertAppeals(batch []models.Appeal) (count int, err error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := repo.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Err(rbErr).Msg("error rolling back transaction")
			}
		}
	}()

	stmt, err := tx.Prepare(upsertAppealSQL)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare statement")
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Err(err).Msg("failed to close statement")
		}
	}()

	syncedAt := repo.now().UTC()
	for _, appeal := range batch {
		_, err = stmt.Exec(append(appeal.ToTuple(), syncedAt)...)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to upsert %s appeal %d", appeal.Kind, appeal.Id)
		}
		count++
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	return count, nil
}

func (repo *sqliteRepository) ListAppeals(since time.Time) ([]models.Appeal, error) {
	rows, err := repo.db.Query(listAppealsSQL, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute appeals query")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Err(err).Msg("failed to close rows")
		}
	}()

	results := make([]models.Appeal, 0)
	for rows.Next() {
		var appeal models.Appeal
		var kind string
		var department sql.NullInt64
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&appeal.Id, &kind, &appeal.Subject, &appeal.Status,
			&department, &appeal.CreatedAt, &resolvedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		appeal.Kind = models.AppealKind(kind)
		if department.Valid {
			d := int(department.Int64)
			appeal.Department = &d
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			appeal.ResolvedAt = &t
		}
		results = append(results, appeal)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over rows")
	}

	return results, nil
}

func (repo *sqliteRepository) LastSynced() (*time.Time, error) {
	var syncedAt time.Time
	err := repo.db.QueryRow(lastSyncedSQL).Scan(&syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read last sync time")
	}
	return &syncedAt, nil
}

func (repo *sqliteRepository) Close() error {
	return repo.db.Close()
}

type dbCheck struct {
	db *sql.DB
}

func (c dbCheck) Pass() bool {
	return c.db.Ping() == nil
}

func (c dbCheck) Name() string {
	return "sqlite"
}

func (repo *sqliteRepository) Check() checks.Check {
	return dbCheck{db: repo.db}
}
