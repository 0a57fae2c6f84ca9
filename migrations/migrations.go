package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createUsers = `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const createRecipes = `
	CREATE TABLE IF NOT EXISTS recipes (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		name VARCHAR(50) NOT NULL,
		description TEXT NOT NULL,
		image VARCHAR(255) NULL,
		posted_at DATETIME NOT NULL,
		INDEX recipes_user_idx (user_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
`

const createIngredients = `
	CREATE TABLE IF NOT EXISTS ingredients (
		id INT AUTO_INCREMENT PRIMARY KEY,
		recipe_id INT NOT NULL,
		name VARCHAR(200) NOT NULL,
		amount VARCHAR(100) NOT NULL,
		FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
	);
`

// Tables lists the schema in dependency order.
var Tables = []struct {
	Name  string
	Query string
}{
	{"users", createUsers},
	{"recipes", createRecipes},
	{"ingredients", createIngredients},
}

// AutoMigrate creates every table that does not exist yet, retrying each
// statement while the database is still coming up.
func AutoMigrate(ctx context.Context, db *sql.DB, retries int, wait time.Duration) error {
	for _, table := range Tables {
		var err error
		for i := 0; i <= retries; i++ {
			if i > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
			if _, err = db.ExecContext(ctx, table.Query); err == nil {
				break
			}
		}
		if err != nil {
			return fmt.Errorf("migrate %s table: %w", table.Name, err)
		}
	}
	return nil
}
