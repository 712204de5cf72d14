package ocrfallback

import (
	"runtime"
	"sync"
)

// poolCache caches a semaphore per distinct thread count, mirroring
// original_source/src/core/ocr.rs's get_ocr_pool: a
// HashMap<usize, Arc<rayon::ThreadPool>> keyed by thread count so that
// repeated calls with the same MaxThreads reuse one pool-wide concurrency
// bound instead of allocating a fresh one per extraction. Go has no
// persistent OS-thread-pool equivalent to rayon's ThreadPool, so the cached
// value here is a buffered channel used as a counting semaphore, which
// bounds concurrent OCR work to the same degree.
var (
	poolCacheMu sync.Mutex
	poolCache   = map[int]chan struct{}{}
)

// semaphoreFor returns the cached semaphore for threads, creating it on
// first use. threads is normalized before lookup so callers sharing an
// effective concurrency bound share one semaphore.
func semaphoreFor(threads int) chan struct{} {
	threads = normalizeMaxThreads(threads)

	poolCacheMu.Lock()
	defer poolCacheMu.Unlock()

	sem, ok := poolCache[threads]
	if !ok {
		sem = make(chan struct{}, threads)
		poolCache[threads] = sem
	}
	return sem
}

// normalizeMaxThreads clamps v to [1, runtime.NumCPU()], defaulting to 4
// when v is zero, per the spec's documented OCR pool default.
func normalizeMaxThreads(v int) int {
	if v == 0 {
		v = 4
	}
	if v < 1 {
		v = 1
	}
	if max := runtime.NumCPU(); v > max {
		v = max
	}
	return v
}
