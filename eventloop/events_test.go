//go:build linux
// +build linux

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestFormatEvents(t *testing.T) {
	assert.Equal(t, "0", FormatEvents(0))
	assert.Equal(t, "EPOLLIN", FormatEvents(unix.EPOLLIN))
	assert.Equal(t, "EPOLLIN|EPOLLOUT", FormatEvents(unix.EPOLLIN|unix.EPOLLOUT))
	assert.Equal(t, "EPOLLERR|EPOLLHUP", FormatEvents(unix.EPOLLERR|unix.EPOLLHUP))
	assert.Equal(t, "EPOLLIN|0x800", FormatEvents(unix.EPOLLIN|0x800))
}

func TestEventRecordRoundTrip(t *testing.T) {
	for _, record := range []uint64{1, 42, 1 << 31, 0xdeadbeefcafe} {
		ev := packEvent(record, EventReadable)
		assert.Equal(t, record, eventRecord(ev))
		assert.Equal(t, EventReadable, ev.Events)
	}
}
