package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/evangelism-tracker/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the persisted record in memory. FailWith makes every
// call return the given error, for exercising storage failures.
type FakeSessionRepo struct {
	values   map[string]string
	lock     sync.RWMutex
	FailWith error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		values: make(map[string]string),
	}
}

func (r *FakeSessionRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.FailWith != nil {
		return "", false, r.FailWith
	}
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeSessionRepo) SetAll(_ context.Context, values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Snapshot copies the stored values, for assertions.
func (r *FakeSessionRepo) Snapshot() map[string]string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
