package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/quillpost/quillpost"
)

// UserRepository implements quillpost.UserProvider on the users table.
type UserRepository struct {
	db DB
}

var _ quillpost.UserProvider = (*UserRepository)(nil)

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByLogin matches the login exactly; logins are case-sensitive.
func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (quillpost.UserRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, login, password_hash FROM users WHERE login = $1`, login)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return quillpost.UserRecord{}, oops.Code("USER_NOT_FOUND").
			With("login", login).
			Wrap(quillpost.ErrUserNotFound)
	}
	if err != nil {
		return quillpost.UserRecord{}, oops.Code("USER_GET_BY_LOGIN_FAILED").
			With("login", login).
			Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (quillpost.UserRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, login, password_hash FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return quillpost.UserRecord{}, oops.Code("USER_NOT_FOUND").
			With("user_id", id).
			Wrap(quillpost.ErrUserNotFound)
	}
	if err != nil {
		return quillpost.UserRecord{}, oops.Code("USER_GET_BY_ID_FAILED").
			With("user_id", id).
			Wrap(err)
	}
	return u, nil
}

// CreateUser inserts a user and returns the stored row.
func (r *UserRepository) CreateUser(ctx context.Context, login, passwordHash string) (quillpost.UserRecord, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (login, password_hash)
		VALUES ($1, $2)
		RETURNING id, login, password_hash
	`, login, passwordHash)

	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return quillpost.UserRecord{}, oops.Code("USER_LOGIN_TAKEN").
			With("login", login).
			Wrap(quillpost.ErrLoginTaken)
	}
	if err != nil {
		return quillpost.UserRecord{}, oops.Code("USER_CREATE_FAILED").
			With("login", login).
			Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").With("user_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(quillpost.ErrUserNotFound)
	}
	return nil
}

// ChangeLogin renames a user. A collision with another user's login wraps
// quillpost.ErrLoginTaken.
func (r *UserRepository) ChangeLogin(ctx context.Context, id int64, newLogin string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET login = $1 WHERE id = $2`, newLogin, id)
	if isUniqueViolation(err) {
		return oops.Code("USER_LOGIN_TAKEN").
			With("user_id", id).
			With("login", newLogin).
			Wrap(quillpost.ErrLoginTaken)
	}
	if err != nil {
		return oops.Code("USER_CHANGE_LOGIN_FAILED").With("user_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(quillpost.ErrUserNotFound)
	}
	return nil
}

// Delete removes a user and, through the foreign key, their messages.
// Sessions already issued to the user are left to expire.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").With("user_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(quillpost.ErrUserNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (quillpost.UserRecord, error) {
	var u quillpost.UserRecord
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash)
	return u, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
