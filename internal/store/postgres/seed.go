package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// SeedOptions describes a bulk load. Users get logins Prefix+"1".."N" and
// share PasswordHash.
type SeedOptions struct {
	Users           int
	MessagesPerUser int
	Prefix          string
	PasswordHash    string
}

type SeedResult struct {
	Users    int64
	Messages int64
}

// Seed bulk-loads users and messages with COPY. It is not idempotent: a
// second run with the same prefix fails on the unique login constraint.
func Seed(ctx context.Context, db DB, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	if opts.Users <= 0 {
		return res, nil
	}
	if opts.Prefix == "" {
		opts.Prefix = "user"
	}

	users := make([][]any, opts.Users)
	for i := range users {
		users[i] = []any{fmt.Sprintf("%s%d", opts.Prefix, i+1), opts.PasswordHash}
	}
	n, err := db.CopyFrom(ctx, pgx.Identifier{"users"}, []string{"login", "password_hash"}, pgx.CopyFromRows(users))
	if isUniqueViolation(err) {
		return res, oops.Code("SEED_LOGIN_TAKEN").With("prefix", opts.Prefix).Wrap(err)
	}
	if err != nil {
		return res, oops.Code("SEED_USERS_FAILED").With("users", opts.Users).Wrap(err)
	}
	res.Users = n

	if opts.MessagesPerUser <= 0 {
		return res, nil
	}

	ids, err := seededUserIDs(ctx, db, opts.Prefix)
	if err != nil {
		return res, err
	}

	messages := make([][]any, 0, len(ids)*opts.MessagesPerUser)
	for _, id := range ids {
		for j := 1; j <= opts.MessagesPerUser; j++ {
			messages = append(messages, []any{id, fmt.Sprintf("message %d from user %d", j, id)})
		}
	}
	n, err = db.CopyFrom(ctx, pgx.Identifier{"messages"}, []string{"user_id", "text"}, pgx.CopyFromRows(messages))
	if err != nil {
		return res, oops.Code("SEED_MESSAGES_FAILED").With("messages", len(messages)).Wrap(err)
	}
	res.Messages = n
	return res, nil
}

func seededUserIDs(ctx context.Context, db DB, prefix string) ([]int64, error) {
	rows, err := db.Query(ctx,
		`SELECT id FROM users WHERE starts_with(login, $1) ORDER BY id`, prefix)
	if err != nil {
		return nil, oops.Code("SEED_USERS_FAILED").With("operation", "list seeded users").Wrap(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, oops.Code("SEED_USERS_FAILED").With("operation", "scan seeded users").Wrap(err)
	}
	return ids, nil
}
