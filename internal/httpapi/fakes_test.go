package httpapi

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quillpost/quillpost"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]quillpost.UserRecord
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]quillpost.UserRecord)}
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, login string) (quillpost.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Login == login {
			return u, nil
		}
	}
	return quillpost.UserRecord{}, quillpost.ErrUserNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (quillpost.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return quillpost.UserRecord{}, quillpost.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, login, hash string) (quillpost.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Login == login {
			return quillpost.UserRecord{}, quillpost.ErrLoginTaken
		}
	}
	f.nextID++
	u := quillpost.UserRecord{ID: f.nextID, Login: login, PasswordHash: hash}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return quillpost.ErrUserNotFound
	}
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) ChangeLogin(_ context.Context, id int64, login string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return quillpost.ErrUserNotFound
	}
	for other, o := range f.byID {
		if other != id && o.Login == login {
			return quillpost.ErrLoginTaken
		}
	}
	u.Login = login
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return quillpost.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeMessages struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	byID   map[int64]quillpost.Message
	err    error
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		byID:  make(map[int64]quillpost.Message),
	}
}

func (f *fakeMessages) List(_ context.Context, limit, offset int64) ([]quillpost.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := make([]quillpost.Message, 0, len(f.byID))
	for _, m := range f.byID {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeMessages) Get(_ context.Context, id int64) (quillpost.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quillpost.Message{}, f.err
	}
	m, ok := f.byID[id]
	if !ok {
		return quillpost.Message{}, quillpost.ErrMessageNotFound
	}
	return m, nil
}

func (f *fakeMessages) Create(_ context.Context, userID int64, text string) (quillpost.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quillpost.Message{}, f.err
	}
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	m := quillpost.Message{ID: f.nextID, UserID: userID, Text: text, CreatedAt: f.clock}
	f.byID[m.ID] = m
	return m, nil
}

func (f *fakeMessages) UpdateText(_ context.Context, id int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return quillpost.ErrMessageNotFound
	}
	m.Text = text
	f.byID[id] = m
	return nil
}

func (f *fakeMessages) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return quillpost.ErrMessageNotFound
	}
	delete(f.byID, id)
	return nil
}
