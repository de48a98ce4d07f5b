package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const tablePrefix = "bank_"

type PostgresStore struct {
	db  *sql.DB
	ctx context.Context
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  db,
		ctx: ctx,
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %sconversation_messages (
			id SERIAL PRIMARY KEY,
			conv_id TEXT NOT NULL,
			msg_id TEXT NOT NULL,
			message TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, tablePrefix),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %sconversation_messages_conv_id_idx ON %sconversation_messages (conv_id)`,
			tablePrefix, tablePrefix),
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(s.ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) AddConversationMessage(id string, msg ConversationMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %sconversation_messages (conv_id, msg_id, message, author, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, tablePrefix)

	_, err := s.db.ExecContext(s.ctx, query, id, msg.ID, msg.Message, string(msg.Author), msg.At)
	if err != nil {
		return fmt.Errorf("failed to insert conversation message: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetConversation(id string) ([]ConversationMessage, error) {
	query := fmt.Sprintf(`
		SELECT msg_id, message, author, created_at
		FROM %sconversation_messages
		WHERE conv_id = $1
		ORDER BY id ASC
	`, tablePrefix)

	rows, err := s.db.QueryContext(s.ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	defer rows.Close() //nolint: errcheck

	messages := []ConversationMessage{}
	for rows.Next() {
		var msg ConversationMessage
		var author string
		if err := rows.Scan(&msg.ID, &msg.Message, &author, &msg.At); err != nil {
			return nil, fmt.Errorf("failed to scan conversation message: %w", err)
		}
		msg.Author = ConversationMessageAuthor(author)
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation messages: %w", err)
	}

	return messages, nil
}

func (s *PostgresStore) ResetConversation(id string) error {
	query := fmt.Sprintf(`DELETE FROM %sconversation_messages WHERE conv_id = $1`, tablePrefix)

	_, err := s.db.ExecContext(s.ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	return nil
}
