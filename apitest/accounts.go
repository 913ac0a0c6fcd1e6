package apitest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/evangelism-tracker/users"
	"golang.org/x/crypto/bcrypt"
)

var (
	errAccountNotFound = errors.New("account not found")
	errEmailTaken      = errors.New("email already registered")
)

// account is a user plus the server-side secrets the client never sees.
type account struct {
	user         users.User
	passwordHash string
}

type accounts struct {
	byID    map[string]*account
	emailID map[string]string // email to user id
	lock    sync.RWMutex
}

func newAccounts() *accounts {
	return &accounts{
		byID:    make(map[string]*account),
		emailID: make(map[string]string),
	}
}

func (a *accounts) create(u users.User, password string) (users.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return users.User{}, err
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := a.emailID[email]; ok {
		return users.User{}, errEmailTaken
	}
	now := nowTimeFunc().UTC()
	u.ID = uuid.New().String()
	u.Email = email
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	a.byID[u.ID] = &account{user: u, passwordHash: hash}
	a.emailID[email] = u.ID
	return u, nil
}

func (a *accounts) getByID(id string) (users.User, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	acc, ok := a.byID[id]
	if !ok {
		return users.User{}, errAccountNotFound
	}
	return acc.user, nil
}

func (a *accounts) getByEmail(email string) (users.User, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	id, ok := a.emailID[strings.ToLower(email)]
	if !ok {
		return users.User{}, errAccountNotFound
	}
	return a.byID[id].user, nil
}

// authenticate returns the user if the password matches.
func (a *accounts) authenticate(email, password string) (users.User, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	id, ok := a.emailID[strings.ToLower(email)]
	if !ok {
		return users.User{}, errAccountNotFound
	}
	acc := a.byID[id]
	if !checkPasswordHash(password, acc.passwordHash) {
		return users.User{}, errAccountNotFound
	}
	return acc.user, nil
}

func (a *accounts) setPassword(id, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	acc, ok := a.byID[id]
	if !ok {
		return errAccountNotFound
	}
	acc.passwordHash = hash
	acc.user.UpdatedAt = nowTimeFunc().UTC()
	return nil
}

func (a *accounts) setActive(id string, active bool) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	acc, ok := a.byID[id]
	if !ok {
		return errAccountNotFound
	}
	acc.user.IsActive = active
	return nil
}

const hashCost = bcrypt.MinCost

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var nowTimeFunc = time.Now
