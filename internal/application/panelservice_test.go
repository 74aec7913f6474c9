package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/dropvault/internal/application"
)

type panelFixture struct {
	store    *fakeCredentialStore
	tokens   *application.TokenService
	sessions *application.SessionProvider
	panel    *application.PanelService
}

func newPanelFixture() panelFixture {
	store := newFakeCredentialStore()
	tokens := application.NewTokenService(store, discardLogger())
	sessions := application.NewSessionProvider()
	uploader := application.NewUploaderService(application.DefaultUploaderOptions())
	panel := application.NewPanelService(tokens, uploader, sessions, discardLogger())
	tokens.OnSave(panel.Reinitialize)

	return panelFixture{store: store, tokens: tokens, sessions: sessions, panel: panel}
}

func TestPanelService_InitWithoutCredential(t *testing.T) {
	f := newPanelFixture()

	s, err := f.panel.Init(context.Background(), "client")
	require.NoError(t, err)

	assert.True(t, s.Token.EntryVisible)
	assert.Equal(t, "", s.Uploader.AuthToken())
}

func TestPanelService_InitWithCredential(t *testing.T) {
	f := newPanelFixture()
	f.store.values["client"] = "stored-token"

	s, err := f.panel.Init(context.Background(), "client")
	require.NoError(t, err)

	assert.False(t, s.Token.EntryVisible)
	assert.Equal(t, "stored-token", s.Uploader.AuthToken())
}

func TestPanelService_InitReadsCredentialOnce(t *testing.T) {
	f := newPanelFixture()
	f.store.values["client"] = "first"

	first, err := f.panel.Init(context.Background(), "client")
	require.NoError(t, err)

	// A write that bypasses Save does not affect the built session.
	f.store.values["client"] = "second"

	again, err := f.panel.Init(context.Background(), "client")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, "first", again.Uploader.AuthToken())
}

func TestPanelService_SaveReinitializesSession(t *testing.T) {
	f := newPanelFixture()
	ctx := context.Background()

	before, err := f.panel.Init(ctx, "client")
	require.NoError(t, err)
	require.True(t, before.Token.EntryVisible)

	require.NoError(t, f.tokens.Save(ctx, "client", "new-token"))

	after, err := f.panel.Init(ctx, "client")
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.False(t, after.Token.EntryVisible)
	assert.Equal(t, "new-token", after.Uploader.AuthToken())
}

func TestPanelService_SlotsAreIndependent(t *testing.T) {
	f := newPanelFixture()
	ctx := context.Background()

	require.NoError(t, f.tokens.Save(ctx, "a", "token-a"))

	b, err := f.panel.Init(ctx, "b")
	require.NoError(t, err)
	assert.True(t, b.Token.EntryVisible)
}

func TestPanelService_InitStoreError(t *testing.T) {
	f := newPanelFixture()
	f.store.getErr = errors.New("locked")

	_, err := f.panel.Init(context.Background(), "client")
	require.Error(t, err)
	assert.Nil(t, f.sessions.Get("client"))
}

func TestPanelService_StartPrunerStopsOnCancel(t *testing.T) {
	f := newPanelFixture()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.panel.SetClock(func() time.Time { return now })

	_, err := f.panel.Init(context.Background(), "client")
	require.NoError(t, err)

	now = now.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.panel.StartPruner(ctx, time.Millisecond, time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return f.sessions.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
