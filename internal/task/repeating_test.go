package task

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRepeatingTask(t *testing.T) {
	var runs atomic.Int32
	task := NewRepeating(func() { runs.Add(1) }, 5*time.Millisecond)

	task.Start()
	task.Start()
	assert.True(t, task.Running())
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)

	task.Stop(false)
	assert.False(t, task.Running())
	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestRepeatingTaskForceExec(t *testing.T) {
	var runs atomic.Int32
	task := NewRepeating(func() { runs.Add(1) }, time.Hour)

	task.Stop(true)
	assert.Equal(t, int32(0), runs.Load(), "stopping an idle task must not execute it")

	task.Start()
	task.Stop(true)
	assert.Equal(t, int32(1), runs.Load())
}
