package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferDevices(t *testing.T) {
	var cpu Buffer = CPUBuffer{Data: []byte("abc")}
	assert.Equal(t, CPU, cpu.Device())
	assert.Equal(t, 3, cpu.Len())
	assert.Equal(t, "cpu", cpu.Device().String())

	var cuda Buffer = CUDABuffer{Length: 8}
	assert.Equal(t, CUDA, cuda.Device())
	assert.Equal(t, 8, cuda.Len())
	assert.Equal(t, "cuda", cuda.Device().String())

	assert.Equal(t, "unknown", Device(99).String())
}
