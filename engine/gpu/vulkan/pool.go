package vulkan

import "sync"

type LockGroup string

const (
	ShaderManagement        LockGroup = "shader_management"
	DescriptorManagement    LockGroup = "descriptor_management"
	PipelineManagement      LockGroup = "pipeline_management"
	CommandBufferManagement LockGroup = "command_buffer_management"
	RenderpassManagement    LockGroup = "renderpass_management"
	DeviceManagement        LockGroup = "device_management"
	QueueManagement         LockGroup = "queue_management"
	InstanceManagement      LockGroup = "instance_management"
)

// LockPool serializes device calls per object group.
type LockPool struct {
	mu    sync.Mutex // Protects access to the locks map
	locks map[LockGroup]*sync.Mutex
}

func NewLockPool() *LockPool {
	return &LockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

// Get or create the mutex of a group
func (lp *LockPool) lock(group LockGroup) *sync.Mutex {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	l, exists := lp.locks[group]
	if !exists {
		l = &sync.Mutex{}
		lp.locks[group] = l
	}
	return l
}

func (lp *LockPool) SafeCall(group LockGroup, fn func() error) error {
	l := lp.lock(group)
	l.Lock()
	defer l.Unlock()

	return fn()
}
