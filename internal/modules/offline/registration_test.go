package offline

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterActivatesFirstWorker(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	opts := testOptions(t, 1)
	opts.WaitForMessage = true

	reg := NewRegistration(nil)
	w := NewWorker(opts, NewMemoryStorage(), network, nil)
	require.NoError(t, reg.Register(ctx, w))

	assert.Same(t, w, reg.Active())
	assert.Nil(t, reg.Waiting())
	assert.Equal(t, PhaseActive, w.Phase())
}

func TestRegisterSkipsWaitingByDefault(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	storage := NewMemoryStorage()
	reg := NewRegistration(nil)

	v1 := NewWorker(testOptions(t, 1), storage, network, nil)
	require.NoError(t, reg.Register(ctx, v1))
	v2 := NewWorker(testOptions(t, 2), storage, network, nil)
	require.NoError(t, reg.Register(ctx, v2))

	assert.Same(t, v2, reg.Active())
	assert.Equal(t, PhaseRedundant, v1.Phase())
	names, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-cache-v2"}, names)
}

func TestSkipWaitingMessagePromotesWaitingWorker(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	storage := NewMemoryStorage()
	reg := NewRegistration(nil)

	opts := testOptions(t, 1)
	opts.WaitForMessage = true
	v1 := NewWorker(opts, storage, network, nil)
	require.NoError(t, reg.Register(ctx, v1))

	opts.Version = 2
	v2 := NewWorker(opts, storage, network, nil)
	require.NoError(t, reg.Register(ctx, v2))
	assert.Same(t, v1, reg.Active())
	assert.Same(t, v2, reg.Waiting())
	assert.Equal(t, PhaseInstalled, v2.Phase())

	// the old worker keeps serving while the new one waits
	network.setOffline(true)
	resp, ok := reg.Fetch(ctx, mustRequest(t, http.MethodGet, testOrigin+"/favicon.ico"))
	require.True(t, ok)
	assert.Equal(t, SourceCache, resp.From)

	recognized, err := reg.PostMessage(ctx, Message{Type: "PING"})
	require.NoError(t, err)
	assert.False(t, recognized)
	assert.Same(t, v1, reg.Active())

	recognized, err = reg.PostMessage(ctx, Message{Type: SkipWaitingMessage})
	require.NoError(t, err)
	assert.True(t, recognized)
	assert.Same(t, v2, reg.Active())
	assert.Nil(t, reg.Waiting())
	assert.Equal(t, PhaseRedundant, v1.Phase())

	names, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fox-cache-v2"}, names)
}

func TestSkipWaitingWithoutWaitingWorker(t *testing.T) {
	recognized, err := NewRegistration(nil).PostMessage(context.Background(), Message{Type: SkipWaitingMessage})
	require.NoError(t, err)
	assert.True(t, recognized)
}

func TestFetchWithoutActiveWorker(t *testing.T) {
	_, ok := NewRegistration(nil).Fetch(context.Background(), mustRequest(t, http.MethodGet, testOrigin+"/"))
	assert.False(t, ok)
}

func TestFailedInstallLeavesActiveWorker(t *testing.T) {
	ctx := context.Background()
	network := newFakeNetwork(testOrigin)
	servedManifest(network)
	storage := NewMemoryStorage()
	reg := NewRegistration(nil)

	v1 := NewWorker(testOptions(t, 1), storage, network, nil)
	require.NoError(t, reg.Register(ctx, v1))

	network.setOffline(true)
	v2 := NewWorker(testOptions(t, 2), storage, network, nil)
	require.Error(t, reg.Register(ctx, v2))
	assert.Same(t, v1, reg.Active())
}
