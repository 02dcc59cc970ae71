//go:build linux
// +build linux

package eventloop

import (
	"sync"
	"testing"

	"github.com/peerlink/peerlink/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type nopHandler struct{}

func (nopHandler) HandleEvents(uint32) {}

func newTestEpoll(t *testing.T) int {
	t.Helper()
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	require.NoError(t, err)
	return epfd
}

func TestRegistryRecordsAreUnique(t *testing.T) {
	epfd := newTestEpoll(t)
	defer unix.Close(epfd)
	reg := newRegistry(epfd)

	const n = 32
	fds := make([]int, n)
	for i := range fds {
		fds[i] = newTestEventfd(t)
	}
	defer func() {
		for _, fd := range fds {
			unix.Close(fd)
		}
	}()

	records := make(chan uint64, n)
	var wg sync.WaitGroup
	for _, fd := range fds {
		wg.Add(1)
		go func(fd int) {
			defer wg.Done()
			record, err := reg.register(fd, EventReadable, nopHandler{})
			if err == nil {
				records <- record
			}
		}(fd)
	}
	wg.Wait()
	close(records)

	seen := make(map[uint64]bool)
	for record := range records {
		assert.Greater(t, record, wakeupRecord)
		assert.False(t, seen[record], "record %d issued twice", record)
		seen[record] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, reg.size())
}

func TestRegistryResolveStaleRecord(t *testing.T) {
	epfd := newTestEpoll(t)
	defer unix.Close(epfd)
	reg := newRegistry(epfd)

	fd := newTestEventfd(t)
	defer unix.Close(fd)

	record, err := reg.register(fd, EventReadable, nopHandler{})
	require.NoError(t, err)
	require.NotNil(t, reg.resolve(record))

	// Re-registration supersedes the record without unregistering.
	replacement, err := reg.register(fd, EventWritable, nopHandler{})
	require.NoError(t, err)
	assert.Greater(t, replacement, record)
	assert.Nil(t, reg.resolve(record))
	assert.NotNil(t, reg.resolve(replacement))
	assert.Equal(t, 1, reg.size())

	require.NoError(t, reg.unregister(fd))
	assert.Nil(t, reg.resolve(replacement))
	assert.Equal(t, 0, reg.size())
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	epfd := newTestEpoll(t)
	defer unix.Close(epfd)
	reg := newRegistry(epfd)

	fd := newTestEventfd(t)
	defer unix.Close(fd)

	assert.Equal(t, util.FdNotRegistered, reg.unregister(fd))
}
