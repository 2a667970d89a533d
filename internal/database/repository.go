package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khrees2412/linkfolio/internal/apperror"
	"github.com/khrees2412/linkfolio/internal/mapper"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ImportResult summarizes one successful transactional import.
type ImportResult struct {
	UserID             uuid.UUID
	ProjectsImported   int
	TechnologiesLinked int
}

// Stats are aggregate row counts for the status command.
type Stats struct {
	Users        int64
	Projects     int64
	Technologies int64
}

// Repository is the sole writer to the portfolio database. Every
// import happens inside one transaction: either all rows land or none
// do.
type Repository struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewRepository returns a repository over the given pool.
func NewRepository(pool *pgxpool.Pool, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{pool: pool, log: log}
}

// ImportProfile persists the mapped rows atomically.
//
// The user is upserted by unique email; projects are upserted by
// unique slug so re-importing the same profile updates rows in place
// instead of duplicating them; technology pairs already present are
// left alone. Any failure rolls back the whole run.
func (r *Repository) ImportProfile(ctx context.Context, user *mapper.UserRecord, projects []mapper.ProjectRecord) (*ImportResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabase("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, bio, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			bio = EXCLUDED.bio,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New(), user.Email, user.PasswordHash, user.Name, user.Bio, nullable(user.AvatarURL), now, now,
	).Scan(&userID)
	if err != nil {
		return nil, wrapDBError(fmt.Sprintf("failed to upsert user %s", user.Email), err)
	}

	result := &ImportResult{UserID: userID}

	for i := range projects {
		p := &projects[i]

		var projectID uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO projects (
				id, user_id, slug, title, description, long_description,
				image_url, live_url, github_url, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (slug)
			DO UPDATE SET
				user_id = EXCLUDED.user_id,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				long_description = EXCLUDED.long_description,
				image_url = EXCLUDED.image_url,
				live_url = EXCLUDED.live_url,
				github_url = EXCLUDED.github_url,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at
			RETURNING id`,
			uuid.New(), userID, p.Slug, p.Title, p.Description, nullable(p.LongDescription),
			nullable(p.ImageURL), nullable(p.LiveURL), nullable(p.GithubURL), p.CreatedAt, p.UpdatedAt,
		).Scan(&projectID)
		if err != nil {
			return nil, wrapDBError(fmt.Sprintf("failed to upsert project %s", p.Slug), err)
		}
		result.ProjectsImported++

		for _, tech := range p.Technologies {
			tag, err := tx.Exec(ctx, `
				INSERT INTO project_technologies (project_id, technology)
				VALUES ($1, $2)
				ON CONFLICT (project_id, technology) DO NOTHING`,
				projectID, tech,
			)
			if err != nil {
				return nil, wrapDBError(fmt.Sprintf("failed to link technology %q to %s", tech, p.Slug), err)
			}
			result.TechnologiesLinked += int(tag.RowsAffected())
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabase("failed to commit import", err)
	}

	r.log.Debug("import committed",
		zap.String("user_id", userID.String()),
		zap.Int("projects", result.ProjectsImported),
		zap.Int("technologies", result.TechnologiesLinked))

	return result, nil
}

// Stats returns aggregate counts across the portfolio tables.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	counts := []struct {
		table string
		dest  *int64
	}{
		{"users", &stats.Users},
		{"projects", &stats.Projects},
		{"project_technologies", &stats.Technologies},
	}

	for _, c := range counts {
		query, args, err := psql.Select("COUNT(*)").From(c.table).ToSql()
		if err != nil {
			return nil, apperror.NewDatabase("failed to build count query", err)
		}
		if err := r.pool.QueryRow(ctx, query, args...).Scan(c.dest); err != nil {
			return nil, wrapDBError(fmt.Sprintf("failed to count %s", c.table), err)
		}
	}
	return stats, nil
}

// ProjectSlugs lists the slugs imported for a user, most recent first.
func (r *Repository) ProjectSlugs(ctx context.Context, email string) ([]string, error) {
	query, args, err := psql.Select("p.slug").
		From("projects p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"u.email": email}).
		OrderBy("p.created_at DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewDatabase("failed to build slug query", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("failed to query project slugs", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, wrapDBError("failed to scan project slug", err)
		}
		slugs = append(slugs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("failed to iterate project slugs", err)
	}
	return slugs, nil
}

// nullable maps an empty string to NULL so optional columns stay NULL
// instead of accumulating empty strings.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// wrapDBError tags a pgx failure, keeping the constraint name visible
// for violations so callers can tell bad data from a bad connection.
func wrapDBError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		return apperror.New(apperror.ErrDatabase, msg,
			fmt.Sprintf("constraint %s violated: %s", pgErr.ConstraintName, pgErr.Message), err)
	}
	return apperror.NewDatabase(msg, err)
}
