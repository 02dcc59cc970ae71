package buffer

//Device identifies where a buffer's payload memory lives. Buffers are pure
//payload carriers owned by the transports; they never enter the event loop's
//control flow.
type Device int

const (
	CPU Device = iota
	CUDA
)

func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	default:
		return "unknown"
	}
}

//Buffer is the minimal payload surface transports agree on.
type Buffer interface {
	Device() Device
	Len() int
}

//CPUBuffer plain host memory
type CPUBuffer struct {
	Data []byte
}

func (b CPUBuffer) Device() Device { return CPU }

func (b CPUBuffer) Len() int { return len(b.Data) }

//CUDABuffer references device memory together with the stream any transfer
//must be ordered on. Both handles are opaque to this library and stay valid
//only as long as the owner keeps them alive.
type CUDABuffer struct {
	Ptr    uintptr
	Length int
	Stream uintptr
}

func (b CUDABuffer) Device() Device { return CUDA }

func (b CUDABuffer) Len() int { return b.Length }
