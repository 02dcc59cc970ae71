//go:build linux
// +build linux

package eventloop

import (
	"os"
	"sync"

	"github.com/peerlink/peerlink/iface"
	"github.com/peerlink/peerlink/util"
	"golang.org/x/sys/unix"
)

//wakeupRecord record 0 is reserved for the loop's own eventfd registration
//and is never issued to callers.
const wakeupRecord uint64 = 0

//registry tracks which record is current for each registered descriptor and
//which handler each record resolves to. Records are minted monotonically and
//never reused, so an event tagged with a superseded record resolves to
//nothing and is discarded as stale. The lock is only held across map and
//epoll_ctl operations, never across a handler invocation.
type registry struct {
	epfd            int
	mu              sync.Mutex
	fdToRecord      map[int]uint64
	recordToHandler map[uint64]iface.IEventHandler
	nextRecord      uint64
}

func newRegistry(epfd int) *registry {
	return &registry{
		epfd:            epfd,
		fdToRecord:      make(map[int]uint64),
		recordToHandler: make(map[uint64]iface.IEventHandler),
		nextRecord:      wakeupRecord + 1,
	}
}

//register installs fd in the epoll set tagged with a fresh record and
//remembers the handler under that record. Registering an fd that is already
//present re-tags it, which supersedes any event still in flight for the old
//record.
func (r *registry) register(fd int, events uint32, handler iface.IEventHandler) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.nextRecord
	r.nextRecord++

	op := unix.EPOLL_CTL_ADD
	oldRecord, registered := r.fdToRecord[fd]
	if registered {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(r.epfd, op, fd, packEvent(record, events)); err != nil {
		return 0, os.NewSyscallError("epoll_ctl", err)
	}

	if registered {
		delete(r.recordToHandler, oldRecord)
	}
	r.fdToRecord[fd] = record
	r.recordToHandler[record] = handler
	return record, nil
}

//unregister removes fd from the epoll set and deletes both mappings. After
//it returns no handler invocation naming the removed record can occur, even
//if an event for it is already sitting in a batch the poller captured.
func (r *registry) unregister(fd int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.fdToRecord[fd]
	if !ok {
		return util.FdNotRegistered
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return os.NewSyscallError("epoll_ctl del", err)
	}
	delete(r.fdToRecord, fd)
	delete(r.recordToHandler, record)
	return nil
}

//resolve maps a record back to its handler. A nil result means the record
//was superseded or never issued and the event carrying it is stale.
func (r *registry) resolve(record uint64) iface.IEventHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordToHandler[record]
}

//size reports how many descriptors are currently registered.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fdToRecord)
}
