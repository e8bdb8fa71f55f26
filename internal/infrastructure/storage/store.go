package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"recipe-keeper/internal/pkg/common"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store wraps the SQLite database holding the recipe collection. WAL mode is
// enabled and migrations are versioned and idempotent.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the recipe database at the given path.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	var journalMode string
	if err := conn.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// In-memory databases report "memory" instead of "wal".
	if journalMode != "wal" && journalMode != "memory" {
		conn.Close()
		return nil, fmt.Errorf("failed to set WAL mode: got %s", journalMode)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &Store{
		conn: conn,
		path: dbPath,
	}

	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to init migrations table: %w", err)
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)

	for _, version := range versions {
		if err := s.applyMigration(version); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", version, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version string) error {
	var applied int
	if err := s.conn.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&applied); err != nil {
		return err
	}
	if applied > 0 {
		return nil
	}

	script, err := migrationFS.ReadFile("migrations/" + version)
	if err != nil {
		return err
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(script)); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		version, time.Now().Unix(),
	); err != nil {
		return err
	}

	return tx.Commit()
}

const recipeColumns = `id, user_id, title, description, ingredients, instructions,
	cooking_time, servings, source, is_vegetarian, is_vegan, is_gluten_free,
	is_dairy_free, created_at, updated_at, deleted_at`

// CreateRecipe persists a new recipe and returns the stored form.
func (s *Store) CreateRecipe(ctx context.Context, userID string, candidate common.CandidateRecipe) (*common.Recipe, error) {
	ingredients, err := encodeJSONColumn(candidate.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructions, err := encodeJSONColumn(candidate.Instructions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instructions: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	recipe := common.Recipe{
		ID:              common.GenerateUUID(),
		UserID:          userID,
		CandidateRecipe: candidate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO recipes (id, user_id, title, description, ingredients,
			instructions, cooking_time, servings, source, is_vegetarian,
			is_vegan, is_gluten_free, is_dairy_free, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID, recipe.UserID, candidate.Title, candidate.Description,
		ingredients, instructions, nullableInt(candidate.CookingTime),
		nullableInt(candidate.Servings), candidate.Source,
		boolToInt(candidate.IsVegetarian), boolToInt(candidate.IsVegan),
		boolToInt(candidate.IsGlutenFree), boolToInt(candidate.IsDairyFree),
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	return &recipe, nil
}

// GetRecipe returns a recipe by id. Soft-deleted recipes are not found.
func (s *Store) GetRecipe(ctx context.Context, id string) (*common.Recipe, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE id = ? AND deleted_at IS NULL`, id)

	recipe, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("recipe not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe, nil
}

// ListRecipes returns non-deleted recipes, newest first, optionally filtered
// to a user.
func (s *Store) ListRecipes(ctx context.Context, userID string, limit, offset int) ([]common.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE deleted_at IS NULL`
	args := []interface{}{}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	return s.queryRecipes(ctx, query, args...)
}

// UpdateRecipe replaces the content of an existing recipe.
func (s *Store) UpdateRecipe(ctx context.Context, id string, candidate common.CandidateRecipe) (*common.Recipe, error) {
	existing, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	ingredients, err := encodeJSONColumn(candidate.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructions, err := encodeJSONColumn(candidate.Instructions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode instructions: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	_, err = s.conn.ExecContext(ctx, `
		UPDATE recipes
		SET title = ?, description = ?, ingredients = ?, instructions = ?,
			cooking_time = ?, servings = ?, source = ?, is_vegetarian = ?,
			is_vegan = ?, is_gluten_free = ?, is_dairy_free = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		candidate.Title, candidate.Description, ingredients, instructions,
		nullableInt(candidate.CookingTime), nullableInt(candidate.Servings),
		candidate.Source, boolToInt(candidate.IsVegetarian),
		boolToInt(candidate.IsVegan), boolToInt(candidate.IsGlutenFree),
		boolToInt(candidate.IsDairyFree), now.Unix(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	updated := *existing
	updated.CandidateRecipe = candidate
	updated.UpdatedAt = now
	return &updated, nil
}

// FetchEligibleRecipes returns every non-deleted recipe, oldest first so scan
// order is stable, optionally filtered to a user.
func (s *Store) FetchEligibleRecipes(ctx context.Context, userID string) ([]common.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE deleted_at IS NULL`
	args := []interface{}{}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at, id"

	return s.queryRecipes(ctx, query, args...)
}

// ResolveRecipesByIDs returns the non-deleted recipes among the given ids.
// Missing ids are simply absent from the result.
func (s *Store) ResolveRecipesByIDs(ctx context.Context, ids []string) ([]common.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE deleted_at IS NULL AND id IN (` + placeholders + `)
		ORDER BY created_at, id`

	return s.queryRecipes(ctx, query, args...)
}

// SoftDelete marks a recipe as deleted and returns it. Already-deleted or
// unknown recipes yield a not-found error.
func (s *Store) SoftDelete(ctx context.Context, id string) (*common.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	result, err := s.conn.ExecContext(ctx, `
		UPDATE recipes SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now.Unix(), now.Unix(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", err)
	}
	if affected == 0 {
		return nil, common.NewNotFoundError("recipe not found")
	}

	recipe.DeletedAt = &now
	recipe.UpdatedAt = now
	return recipe, nil
}

func (s *Store) queryRecipes(ctx context.Context, query string, args ...interface{}) ([]common.Recipe, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []common.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*common.Recipe, error) {
	var (
		recipe       common.Recipe
		ingredients  string
		instructions string
		cookingTime  sql.NullInt64
		servings     sql.NullInt64
		vegetarian   int
		vegan        int
		glutenFree   int
		dairyFree    int
		createdAt    int64
		updatedAt    int64
		deletedAt    sql.NullInt64
	)

	err := row.Scan(
		&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.Description,
		&ingredients, &instructions, &cookingTime, &servings, &recipe.Source,
		&vegetarian, &vegan, &glutenFree, &dairyFree,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := common.ParseJSON(ingredients, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	if err := common.ParseJSON(instructions, &recipe.Instructions); err != nil {
		return nil, fmt.Errorf("failed to decode instructions: %w", err)
	}

	if cookingTime.Valid {
		v := int(cookingTime.Int64)
		recipe.CookingTime = &v
	}
	if servings.Valid {
		v := int(servings.Int64)
		recipe.Servings = &v
	}
	recipe.IsVegetarian = vegetarian != 0
	recipe.IsVegan = vegan != 0
	recipe.IsGlutenFree = glutenFree != 0
	recipe.IsDairyFree = dairyFree != 0
	recipe.CreatedAt = time.Unix(createdAt, 0).UTC()
	recipe.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if deletedAt.Valid {
		t := time.Unix(deletedAt.Int64, 0).UTC()
		recipe.DeletedAt = &t
	}

	return &recipe, nil
}

func encodeJSONColumn(v interface{}) (string, error) {
	encoded, err := common.ToJSON(v)
	if err != nil {
		return "", err
	}
	if encoded == "null" {
		return "[]", nil
	}
	return encoded, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
