package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kerryjj/community-votes-action/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type Database struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Database, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	db := &Database{Pool: pool}
	if err := db.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return db, nil
}

func (db *Database) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		location TEXT NOT NULL,
		type TEXT NOT NULL,
		image_url TEXT,
		creator_id TEXT REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS votes (
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS volunteers (
		project_id TEXT REFERENCES projects(id) ON DELETE CASCADE,
		user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_projects_type ON projects(type);
	CREATE INDEX IF NOT EXISTS idx_votes_project ON votes(project_id);
	CREATE INDEX IF NOT EXISTS idx_volunteers_project ON volunteers(project_id);
	`

	_, err := db.Pool.Exec(ctx, schema)
	return err
}

func (db *Database) CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error) {
	var user models.User

	err := db.Pool.QueryRow(ctx,
		`INSERT INTO users (id, email, display_name, password_hash) VALUES ($1, $2, $3, $4)
		 RETURNING id, email, display_name, created_at`,
		uuid.New().String(), email, displayName, passwordHash,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (db *Database) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := db.Pool.QueryRow(ctx,
		"SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (db *Database) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	err := db.Pool.QueryRow(ctx,
		"SELECT id, email, display_name, created_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (db *Database) CreateProject(ctx context.Context, p *models.Project) error {
	p.Normalize()
	p.ID = uuid.New().String()

	var imageURL *string
	if p.ImageURL != "" {
		imageURL = &p.ImageURL
	}

	return db.Pool.QueryRow(ctx,
		`INSERT INTO projects (id, title, description, location, type, image_url, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		p.ID, p.Title, p.Description, p.Location, string(p.Type), imageURL, p.CreatorID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

const projectColumns = `p.id, p.title, p.description, p.location, p.type, p.image_url,
	p.creator_id, p.created_at, p.updated_at,
	COUNT(v.user_id) AS votes`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var imageURL, creatorID *string

	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Location, &p.Type,
		&imageURL, &creatorID, &p.CreatedAt, &p.UpdatedAt, &p.Votes)
	if err != nil {
		return nil, err
	}

	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	if creatorID != nil {
		p.CreatorID = *creatorID
	}
	p.Normalize()

	return &p, nil
}

// GetAllProjects returns every project with its ledger-derived vote
// count, newest first.
func (db *Database) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects p
		 LEFT JOIN votes v ON p.id = v.project_id
		 GROUP BY p.id
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}

	return projects, rows.Err()
}

func (db *Database) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	p, err := scanProject(db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+`
		 FROM projects p
		 LEFT JOIN votes v ON p.id = v.project_id
		 WHERE p.id = $1
		 GROUP BY p.id`,
		id,
	))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// UpdateProject writes the editable fields and bumps updated_at. The
// creator reference is never part of the update set.
func (db *Database) UpdateProject(ctx context.Context, p *models.Project) error {
	p.Normalize()

	tag, err := db.Pool.Exec(ctx,
		`UPDATE projects
		 SET title = $1, description = $2, location = $3, type = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		p.Title, p.Description, p.Location, string(p.Type), p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProjectImage attaches an uploaded image to an existing project.
// The image is saved after the insert because the file path needs the
// server-assigned id, so the URL lands via this dedicated update.
func (db *Database) SetProjectImage(ctx context.Context, id, imageURL string) error {
	tag, err := db.Pool.Exec(ctx,
		"UPDATE projects SET image_url = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		imageURL, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *Database) DeleteProject(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleVote flips the user's vote on a project inside a transaction:
// an existing ledger row is removed, a missing one inserted. It returns
// the user's new vote state and the resulting count, so the displayed
// number always reflects a committed write. Concurrent toggles from
// different users cannot lose updates; the count is derived, never
// overwritten.
func (db *Database) ToggleVote(ctx context.Context, projectID, userID string) (voted bool, count int, err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"DELETE FROM votes WHERE project_id = $1 AND user_id = $2",
		projectID, userID,
	)
	if err != nil {
		return false, 0, err
	}

	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx,
			"INSERT INTO votes (project_id, user_id) VALUES ($1, $2)",
			projectID, userID,
		); err != nil {
			return false, 0, err
		}
		voted = true
	}

	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM votes WHERE project_id = $1",
		projectID,
	).Scan(&count); err != nil {
		return false, 0, err
	}

	return voted, count, tx.Commit(ctx)
}

func (db *Database) HasUserVoted(ctx context.Context, projectID, userID string) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM votes WHERE project_id = $1 AND user_id = $2",
		projectID, userID,
	).Scan(&count)
	return count > 0, err
}

// AddVolunteer records the user as a volunteer for the project.
// Volunteering twice is a no-op.
func (db *Database) AddVolunteer(ctx context.Context, projectID, userID string) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO volunteers (project_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (project_id, user_id) DO NOTHING`,
		projectID, userID,
	)
	return err
}

func (db *Database) HasVolunteered(ctx context.Context, projectID, userID string) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM volunteers WHERE project_id = $1 AND user_id = $2",
		projectID, userID,
	).Scan(&count)
	return count > 0, err
}

// GetStats returns the aggregate counters for the home page.
func (db *Database) GetStats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	err := db.Pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM volunteers)`,
	).Scan(&s.Projects, &s.Votes, &s.Volunteers)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *Database) Close() {
	db.Pool.Close()
}
