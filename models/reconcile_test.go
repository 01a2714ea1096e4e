package models

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type reconcileEvent struct {
	kind string
	id   string
}

func recordReconcile(t *testing.T, locals []string, remotes []string) []reconcileEvent {
	t.Helper()
	var events []reconcileEvent
	err := reconcileSet(locals, remotes,
		func(local, remote string) bool { return local == remote },
		func(local, remote string) error {
			events = append(events, reconcileEvent{"match", local})
			return nil
		},
		func(local string) error {
			events = append(events, reconcileEvent{"vanished", local})
			return nil
		},
		func(remote string) error {
			events = append(events, reconcileEvent{"new", remote})
			return nil
		})
	assert.NoError(t, err)
	return events
}

func TestReconcileSetConverges(t *testing.T) {
	events := recordReconcile(t,
		[]string{"a", "b", "c"},
		[]string{"b", "c", "d"})

	assert.Equal(t, []reconcileEvent{
		{"vanished", "a"},
		{"match", "b"},
		{"match", "c"},
		{"new", "d"},
	}, events)
}

func TestReconcileSetDeletesBeforeCreating(t *testing.T) {
	// a full turnover must remove the stale entries before the creates
	// run, so the local set never exceeds the remote cardinality
	events := recordReconcile(t,
		[]string{"a", "b"},
		[]string{"x", "y"})

	assert.Equal(t, []reconcileEvent{
		{"vanished", "a"},
		{"vanished", "b"},
		{"new", "x"},
		{"new", "y"},
	}, events)
}

func TestReconcileSetConsumesMatchedRemotes(t *testing.T) {
	// two locals matching the same remote: only one may claim it, the
	// other has vanished
	events := recordReconcile(t,
		[]string{"a", "a"},
		[]string{"a"})

	assert.Equal(t, []reconcileEvent{
		{"match", "a"},
		{"vanished", "a"},
	}, events)
}

func TestReconcileSetIdempotent(t *testing.T) {
	events := recordReconcile(t,
		[]string{"a", "b"},
		[]string{"a", "b"})

	assert.Equal(t, []reconcileEvent{
		{"match", "a"},
		{"match", "b"},
	}, events)
}

func TestReconcileSetEmptySides(t *testing.T) {
	assert.Empty(t, recordReconcile(t, nil, nil))

	events := recordReconcile(t, nil, []string{"a"})
	assert.Equal(t, []reconcileEvent{{"new", "a"}}, events)

	events = recordReconcile(t, []string{"a"}, nil)
	assert.Equal(t, []reconcileEvent{{"vanished", "a"}}, events)
}

func TestReconcileSetStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	created := 0
	err := reconcileSet([]string{"a"}, []string{"a", "b"},
		func(local, remote string) bool { return local == remote },
		func(local, remote string) error { return boom },
		func(local string) error { return nil },
		func(remote string) error {
			created++
			return nil
		})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, created)
}
