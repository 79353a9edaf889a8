package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vcnotifier/vc-notifier/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// MemoryDBPath opens the registry in memory; state lives for the process lifetime only
const MemoryDBPath = ":memory:"

// registryRepo implements the notification registry on SQLite
type registryRepo struct {
	db *sql.DB
}

// NewRegistryRepo creates a new registry repository
func NewRegistryRepo(dbPath string) (repo.RegistryRepo, error) {
	if dbPath == "" {
		dbPath = MemoryDBPath
	}

	if !isMemoryPath(dbPath) {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every new connection to :memory: is a fresh database
	if isMemoryPath(dbPath) {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS subscribers (
			guild_id TEXT NOT NULL,
			username TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			UNIQUE (guild_id, username)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create subscribers table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notification_channels (
			guild_id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create notification_channels table: %w", err)
	}

	return &registryRepo{db: db}, nil
}

// AddSubscriber subscribes a username to a guild
func (r *registryRepo) AddSubscriber(ctx context.Context, communityID, username string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO subscribers (guild_id, username, created_at)
		VALUES (?, ?, ?)
	`, communityID, username, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to add subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add subscriber: %w", err)
	}
	return n > 0, nil
}

// RemoveSubscriber unsubscribes a username from a guild
func (r *registryRepo) RemoveSubscriber(ctx context.Context, communityID, username string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM subscribers WHERE guild_id = ? AND username = ?
	`, communityID, username)
	if err != nil {
		return false, fmt.Errorf("failed to remove subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove subscriber: %w", err)
	}
	return n > 0, nil
}

// Subscribers lists a guild's subscribers in subscription order
func (r *registryRepo) Subscribers(ctx context.Context, communityID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT username FROM subscribers WHERE guild_id = ? ORDER BY seq
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return usernames, nil
}

// NotificationChannel returns the cached notification channel ID
func (r *registryRepo) NotificationChannel(ctx context.Context, communityID string) (string, error) {
	var channelID string
	err := r.db.QueryRowContext(ctx, `
		SELECT channel_id FROM notification_channels WHERE guild_id = ?
	`, communityID).Scan(&channelID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query notification channel: %w", err)
	}
	return channelID, nil
}

// SetNotificationChannel caches the notification channel ID
func (r *registryRepo) SetNotificationChannel(ctx context.Context, communityID, channelID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notification_channels (guild_id, channel_id, updated_at)
		VALUES (?, ?, ?)
	`, communityID, channelID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save notification channel: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *registryRepo) Close() error {
	return r.db.Close()
}

func isMemoryPath(dbPath string) bool {
	return dbPath == MemoryDBPath || strings.Contains(dbPath, "mode=memory")
}
