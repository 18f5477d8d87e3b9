package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"vn.io.arda/provisioner/internal/domain"
)

// fakeDirectory records every remote call so tests can assert call order and
// counts. User listings are served page by page from the configured pages.
type fakeDirectory struct {
	mu sync.Mutex

	roles    []domain.Role
	rolesErr error

	pages      [][]domain.UserRecord
	failAtPage int // page index whose fetch fails; -1 for none

	createErr  error
	inviteErr  error
	disableErr error

	calls       []string
	created     []createCall
	invited     []string
	disabled    []string
	pageFetches int
}

type createCall struct {
	email  string
	name   string
	roleID string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{failAtPage: -1}
}

func (f *fakeDirectory) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDirectory) CreateUser(_ context.Context, _ domain.CredentialPair, email, name, roleID string) (domain.UserRecord, error) {
	f.record("create")
	if f.createErr != nil {
		return domain.UserRecord{}, f.createErr
	}
	f.created = append(f.created, createCall{email: email, name: name, roleID: roleID})
	id := fmt.Sprintf("u-%d", len(f.created))
	return domain.UserRecord{ID: id, Email: email, Name: name, Status: domain.StatusPending}, nil
}

func (f *fakeDirectory) SendInvite(_ context.Context, _ domain.CredentialPair, userID string) (int, error) {
	f.record("invite")
	if f.inviteErr != nil {
		return 0, f.inviteErr
	}
	f.invited = append(f.invited, userID)
	return 1, nil
}

func (f *fakeDirectory) DisableUser(_ context.Context, _ domain.CredentialPair, userID string) error {
	f.record("disable")
	if f.disableErr != nil {
		return f.disableErr
	}
	f.disabled = append(f.disabled, userID)
	return nil
}

func (f *fakeDirectory) ListRoles(_ context.Context, _ domain.CredentialPair) ([]domain.Role, error) {
	f.record("roles")
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles, nil
}

func (f *fakeDirectory) ListUsers(_ domain.CredentialPair, _ domain.UserStatus) domain.UserPager {
	f.record("list")
	return &fakePager{dir: f}
}

type fakePager struct {
	dir  *fakeDirectory
	page int
	buf  []domain.UserRecord
	cur  domain.UserRecord
	err  error
}

func (p *fakePager) Next(_ context.Context) bool {
	for len(p.buf) == 0 {
		if p.err != nil || p.page >= len(p.dir.pages) {
			return false
		}
		if p.dir.failAtPage == p.page {
			p.err = errors.New("listing failed")
			return false
		}
		p.buf = p.dir.pages[p.page]
		p.page++
		p.dir.pageFetches++
	}
	p.cur = p.buf[0]
	p.buf = p.buf[1:]
	return true
}

func (p *fakePager) User() domain.UserRecord { return p.cur }
func (p *fakePager) Err() error              { return p.err }

// fakeSecrets serves a fixed org map and counts fetches.
type fakeSecrets struct {
	orgs    map[string]domain.CredentialPair
	err     error
	fetches int
}

func (f *fakeSecrets) Orgs(_ context.Context) (map[string]domain.CredentialPair, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.orgs, nil
}

// fakeStore holds batch objects in memory.
type fakeStore struct {
	objects   map[string]string // bucket/key → content
	removed   []string
	opened    []string
	removeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]string)}
}

func (f *fakeStore) Open(_ context.Context, ref domain.BatchRef) (io.ReadCloser, error) {
	content, ok := f.objects[ref.String()]
	if !ok {
		return nil, fmt.Errorf("object %s not found", ref)
	}
	f.opened = append(f.opened, ref.String())
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeStore) Remove(_ context.Context, ref domain.BatchRef) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, ref.String())
	delete(f.objects, ref.String())
	return nil
}

func testCreds() map[string]domain.CredentialPair {
	return map[string]domain.CredentialPair{
		"acme":   {APIKey: "api-acme", AppKey: "app-acme"},
		"globex": {APIKey: "api-globex", AppKey: "app-globex"},
	}
}
