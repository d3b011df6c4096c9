package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/repository/memory"
)

var shareIDRe = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

type failingStore struct{}

func (failingStore) Put(context.Context, *model.ShareRecord) error {
	return errors.New("connection refused")
}

func (failingStore) Get(_ context.Context, id string) (*model.ShareRecord, error) {
	return nil, apperror.NotFound("share", id)
}

func newTestShare(t *testing.T) (*ShareService, *memory.ShareStore) {
	t.Helper()
	store := memory.NewShareStore()
	svc := NewShareService(store, "https://folio.example.com/", testLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func TestShare_RoundTrip(t *testing.T) {
	svc, _ := newTestShare(t)
	profile := model.GeneratedProfile{ID: "p1", Name: "Jane", Skills: []string{"Go"}}

	res, err := svc.Create(context.Background(), profile)
	require.NoError(t, err)

	assert.Regexp(t, shareIDRe, res.ShareID)
	assert.Equal(t, "https://folio.example.com/share/"+res.ShareID, res.ShareURL)
	assert.Equal(t, fixedNow.Add(30*24*time.Hour), res.ExpiresAt)

	got, err := svc.Get(context.Background(), res.ShareID)
	require.NoError(t, err)
	assert.Equal(t, profile, *got)
}

func TestShare_GetErrors(t *testing.T) {
	svc, _ := newTestShare(t)

	_, err := svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Get(context.Background(), "Zz9Zz9Zz")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestShare_CollisionOverwrites(t *testing.T) {
	svc, store := newTestShare(t)
	svc.newID = func() (string, error) { return "SAMEid01", nil }

	_, err := svc.Create(context.Background(), model.GeneratedProfile{Name: "first"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), model.GeneratedProfile{Name: "second"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), "SAMEid01")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, 1, store.Len())
}

func TestShare_StoreFailure(t *testing.T) {
	svc := NewShareService(failingStore{}, "http://localhost:8080", testLogger())

	_, err := svc.Create(context.Background(), model.GeneratedProfile{})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewShareID(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := newShareID()
		require.NoError(t, err)
		require.Regexp(t, shareIDRe, id)
		seen[id] = true
	}
	// 1000 draws from 62^8 ids: a repeat would point at a broken generator.
	assert.Len(t, seen, 1000)
}
