package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/quillpost/quillpost"
)

const messageColumns = `id, user_id, text, created_at`

// MessageRepository stores messages. Ownership is checked by callers; the
// repository only enforces that the author exists.
type MessageRepository struct {
	db DB
}

func NewMessageRepository(db DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// List returns one page of messages, newest first.
func (r *MessageRepository) List(ctx context.Context, limit, offset int64) ([]quillpost.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").
			With("limit", limit).
			With("offset", offset).
			Wrap(err)
	}
	defer rows.Close()

	messages := make([]quillpost.Message, 0, max(min(limit, 100), 0))
	for rows.Next() {
		var m quillpost.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.CreatedAt); err != nil {
			return nil, oops.Code("MESSAGE_LIST_FAILED").With("operation", "scan message").Wrap(err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").With("operation", "iterate messages").Wrap(err)
	}
	return messages, nil
}

func (r *MessageRepository) Get(ctx context.Context, id int64) (quillpost.Message, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)

	m, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return quillpost.Message{}, oops.Code("MESSAGE_NOT_FOUND").
			With("message_id", id).
			Wrap(quillpost.ErrMessageNotFound)
	}
	if err != nil {
		return quillpost.Message{}, oops.Code("MESSAGE_GET_FAILED").With("message_id", id).Wrap(err)
	}
	return m, nil
}

// Create inserts a message authored by userID and returns the stored row.
func (r *MessageRepository) Create(ctx context.Context, userID int64, text string) (quillpost.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (user_id, text)
		VALUES ($1, $2)
		RETURNING `+messageColumns,
		userID, text)

	m, err := scanMessage(row)
	if isForeignKeyViolation(err) {
		return quillpost.Message{}, oops.Code("USER_NOT_FOUND").
			With("user_id", userID).
			Wrap(quillpost.ErrUserNotFound)
	}
	if err != nil {
		return quillpost.Message{}, oops.Code("MESSAGE_CREATE_FAILED").With("user_id", userID).Wrap(err)
	}
	return m, nil
}

func (r *MessageRepository) UpdateText(ctx context.Context, id int64, text string) error {
	tag, err := r.db.Exec(ctx, `UPDATE messages SET text = $1 WHERE id = $2`, text, id)
	if err != nil {
		return oops.Code("MESSAGE_UPDATE_FAILED").With("message_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("MESSAGE_NOT_FOUND").With("message_id", id).Wrap(quillpost.ErrMessageNotFound)
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return oops.Code("MESSAGE_DELETE_FAILED").With("message_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("MESSAGE_NOT_FOUND").With("message_id", id).Wrap(quillpost.ErrMessageNotFound)
	}
	return nil
}

func scanMessage(row pgx.Row) (quillpost.Message, error) {
	var m quillpost.Message
	err := row.Scan(&m.ID, &m.UserID, &m.Text, &m.CreatedAt)
	return m, err
}
