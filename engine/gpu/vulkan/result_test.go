package vulkan

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", ResultString(Success, false))
	assert.Equal(t, "VK_ERROR_DEVICE_LOST", ResultString(ErrorDeviceLost, false))
	assert.Contains(t, ResultString(ErrorOutOfPoolMemory, true), "pool memory allocation")
	assert.Equal(t, "VK_ERROR_UNKNOWN", ResultString(Result(-424242), false))

	assert.True(t, ResultIsSuccess(Suboptimal))
	assert.False(t, ResultIsSuccess(ErrorOutOfDate))
}

func TestResultErrorIsDeviceLost(t *testing.T) {
	err := fmt.Errorf("submit: %w", &ResultError{Op: "vkQueueSubmit", Result: ErrorDeviceLost})
	assert.True(t, errors.Is(err, ErrDeviceLost))
	assert.False(t, IsDeviceLost(&ResultError{Op: "vkCreateShaderModule", Result: ErrorOutOfHostMemory}))
}

func TestLockPoolSerializesGroup(t *testing.T) {
	pool := NewLockPool()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(PipelineManagement, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, counter)

	want := errors.New("boom")
	assert.Equal(t, want, pool.SafeCall(ShaderManagement, func() error { return want }))
}
