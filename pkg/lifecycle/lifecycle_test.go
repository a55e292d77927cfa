// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stratastor/strata-csi/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHooks() {
	mu.Lock()
	defer mu.Unlock()
	shutdownHooks = nil
	reloadHooks = nil
	cancel = nil
}

func TestEnsureSingleInstance(t *testing.T) {
	t.Cleanup(resetHooks)
	pidPath := filepath.Join(t.TempDir(), "strata-csi.pid")

	require.NoError(t, EnsureSingleInstance(pidPath))
	data, err := os.ReadFile(pidPath)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	Shutdown()
	_, err = os.Stat(pidPath)
	assert.True(t, os.IsNotExist(err), "shutdown removes the PID file")
}

func TestEnsureSingleInstanceStale(t *testing.T) {
	t.Cleanup(resetHooks)
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.pid")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	assert.NoError(t, EnsureSingleInstance(empty))

	garbage := filepath.Join(dir, "garbage.pid")
	require.NoError(t, os.WriteFile(garbage, []byte("not-a-pid"), 0644))
	err := EnsureSingleInstance(garbage)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.LifecyclePID))

	assert.Error(t, EnsureSingleInstance(""))
}

func TestShutdownOrder(t *testing.T) {
	t.Cleanup(resetHooks)

	var order []int
	ctx, c := context.WithCancel(context.Background())
	RegisterContextCanceller(c)
	RegisterShutdownHook(func() { order = append(order, 1) })
	RegisterShutdownHook(func() { order = append(order, 2) })

	Shutdown()
	assert.Equal(t, []int{2, 1}, order)
	assert.Error(t, ctx.Err())

	Shutdown()
	assert.Equal(t, []int{2, 1}, order, "hooks run once")
}

func TestReloadHooks(t *testing.T) {
	t.Cleanup(resetHooks)

	calls := 0
	RegisterReloadHook(func() { calls++ })
	reload()
	reload()
	assert.Equal(t, 2, calls)
}
