package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"intranet/internal/domain/identity"
	"intranet/internal/platform/config"
)

// Seed ensures the bootstrap admin account exists so a fresh deployment can
// log in and approve the first batch of access requests.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	return ensureAdminUser(ctx, pool, cfg)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	username := strings.TrimSpace(cfg.SeedAdminUsername)
	password := strings.TrimSpace(cfg.SeedAdminPassword)
	if username == "" || password == "" {
		return nil
	}

	employeeID := strings.TrimSpace(cfg.SeedAdminEmployee)
	if employeeID == "" {
		employeeID = "EMP-ADM-001"
	}

	var id int64
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := identity.PrepareCredential(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (employee_id, username, name, password_hash, department, position)
		VALUES ($1, $2, $3, $4, 'admin-finance', 'Administrator')
		ON CONFLICT (username) DO NOTHING`,
		employeeID, username, cfg.SeedAdminName, hash)
	return err
}
