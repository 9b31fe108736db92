package prometheus

import (
	"context"

	"github.com/quillpost/quillpost"
)

type nopUsers struct{}

func (nopUsers) GetUserByLogin(context.Context, string) (quillpost.UserRecord, error) {
	return quillpost.UserRecord{}, quillpost.ErrUserNotFound
}

func (nopUsers) GetUserByID(context.Context, int64) (quillpost.UserRecord, error) {
	return quillpost.UserRecord{}, quillpost.ErrUserNotFound
}

func (nopUsers) CreateUser(context.Context, string, string) (quillpost.UserRecord, error) {
	return quillpost.UserRecord{}, quillpost.ErrLoginTaken
}

func (nopUsers) UpdatePasswordHash(context.Context, int64, string) error { return nil }

func memoryConfig() quillpost.Config {
	cfg := quillpost.DefaultConfig()
	cfg.Session.Backend = quillpost.BackendMemory
	cfg.Session.SweepInterval = 0
	return cfg
}
