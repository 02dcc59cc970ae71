//go:build linux
// +build linux

package eventloop

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Event masks use the epoll bit encoding directly. These are the common
// combinations callers register with; any unix.EPOLL* bits are accepted.
const (
	EventReadable = uint32(unix.EPOLLIN | unix.EPOLLPRI)
	EventWritable = uint32(unix.EPOLLOUT)
	EventErrors   = uint32(unix.EPOLLERR | unix.EPOLLHUP)
)

//packEvent encodes a record into the 64-bit user data of an epoll event.
//epoll_wait reports the data set by the last epoll_ctl for the descriptor,
//which is what lets stale events be told apart from live ones.
func packEvent(record uint64, events uint32) *unix.EpollEvent {
	return &unix.EpollEvent{
		Events: events,
		Fd:     int32(record),
		Pad:    int32(record >> 32),
	}
}

//eventRecord decodes the record tag carried by a ready epoll event.
func eventRecord(ev *unix.EpollEvent) uint64 {
	return uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32
}

//FormatEvents renders an epoll event mask in a readable form for logs,
//e.g. "EPOLLIN|EPOLLOUT". Pure function, no side effects.
func FormatEvents(events uint32) string {
	names := []struct {
		bit  uint32
		name string
	}{
		{unix.EPOLLIN, "EPOLLIN"},
		{unix.EPOLLOUT, "EPOLLOUT"},
		{unix.EPOLLPRI, "EPOLLPRI"},
		{unix.EPOLLERR, "EPOLLERR"},
		{unix.EPOLLHUP, "EPOLLHUP"},
		{unix.EPOLLRDHUP, "EPOLLRDHUP"},
		{unix.EPOLLONESHOT, "EPOLLONESHOT"},
		{unix.EPOLLET, "EPOLLET"},
	}

	parts := make([]string, 0, 4)
	rest := events
	for _, entry := range names {
		if events&entry.bit == entry.bit {
			parts = append(parts, entry.name)
			rest &^= entry.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", rest))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}
