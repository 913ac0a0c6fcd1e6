package fakesessionrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/evangelism-tracker/sessions"
	fakesessionrepo "github.com/jrsteele09/evangelism-tracker/sessions/repofakes"
	"github.com/jrsteele09/evangelism-tracker/sessions/repotest"
	"github.com/stretchr/testify/require"
)

func TestFakeSessionRepo(t *testing.T) {
	repotest.Run(t, fakesessionrepo.NewFakeSessionRepo())
}

func TestFakeSessionRepo_FailWith(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	repo.FailWith = errors.New("quota exceeded")

	_, _, err := repo.Get(context.Background(), sessions.AccessTokenKey)
	require.EqualError(t, err, "quota exceeded")
	require.Error(t, repo.SetAll(context.Background(), map[string]string{"a": "b"}))
	require.Error(t, repo.Delete(context.Background(), "a"))
}
