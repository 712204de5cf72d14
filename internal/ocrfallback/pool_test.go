package ocrfallback

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMaxThreads(t *testing.T) {
	cpus := runtime.NumCPU()
	wantDefault := 4
	if cpus < wantDefault {
		wantDefault = cpus
	}
	assert.Equal(t, wantDefault, normalizeMaxThreads(0))
	assert.Equal(t, 1, normalizeMaxThreads(-5))
	assert.Equal(t, cpus, normalizeMaxThreads(cpus+100))
	if cpus > 1 {
		assert.Equal(t, cpus-1, normalizeMaxThreads(cpus-1))
	}
}

func TestSemaphoreForReusesSameThreadCount(t *testing.T) {
	a := semaphoreFor(2)
	b := semaphoreFor(2)
	assert.Equal(t, cap(a), cap(b))
	assert.True(t, a == b, "same thread count should return the cached semaphore")
}
