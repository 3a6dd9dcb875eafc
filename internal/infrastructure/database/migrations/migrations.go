// Package migrations chứa schema SQL và seed data được embed vào binary.
// cmd/migrate và integration test dùng chung package này.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"recipe-backend/pkg/logger"
)

// File goose: NNNNNN_name.sql với hai phần -- +goose Up / -- +goose Down
//
//go:embed sql/*.sql
var sqlFS embed.FS

// Migrator bọc goose.Provider; version được ghi vào bảng goose_db_version.
// Mỗi migration chạy trong transaction riêng.
type Migrator struct {
	provider *goose.Provider
}

func NewMigrator(db *sql.DB) (*Migrator, error) {
	fsys, err := fs.Sub(sqlFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return newMigrator(db, fsys)
}

func newMigrator(db *sql.DB, fsys fs.FS) (*Migrator, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return &Migrator{provider: provider}, nil
}

// Versions liệt kê version của các migration đã embed, tăng dần
func (m *Migrator) Versions() []int64 {
	sources := m.provider.ListSources()
	versions := make([]int64, 0, len(sources))
	for _, s := range sources {
		versions = append(versions, s.Version)
	}
	return versions
}

// Version trả về version cao nhất đã áp dụng; 0 khi chưa có migration nào
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Up áp dụng mọi migration chưa chạy, trả về số migration đã áp dụng
func (m *Migrator) Up(ctx context.Context) (int, error) {
	results, err := m.provider.Up(ctx)
	logResults("migration applied", results)
	if err != nil {
		return applied(results), fmt.Errorf("migrate up failed: %w", err)
	}
	return applied(results), nil
}

// Down rollback tối đa steps migration gần nhất
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	if steps <= 0 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}

	reverted := 0
	for reverted < steps {
		result, err := m.provider.Down(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			break
		}
		if err != nil {
			return reverted, fmt.Errorf("migrate down failed: %w", err)
		}
		logResults("migration reverted", []*goose.MigrationResult{result})
		reverted++
	}
	return reverted, nil
}

func applied(results []*goose.MigrationResult) int {
	n := 0
	for _, r := range results {
		if r != nil && r.Error == nil {
			n++
		}
	}
	return n
}

func logResults(msg string, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil || r.Error != nil {
			continue
		}
		logger.Info(msg, map[string]interface{}{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration.String(),
		})
	}
}
