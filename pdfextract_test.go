package pdfextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFutureGetReturnsResult(t *testing.T) {
	f := newFuture(func() (int, error) { return 42, nil })
	got, err := f.Get()
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestFutureGetPropagatesError(t *testing.T) {
	boom := assert.AnError
	f := newFuture(func() (int, error) { return 0, boom })
	_, err := f.Get()
	assert.Equal(t, boom, err)
}

func TestDefaultOCROptions(t *testing.T) {
	opts := DefaultOCROptions()
	assert.Equal(t, "eng", opts.Lang)
	assert.Equal(t, 1, opts.MinTextLength)
	assert.Equal(t, 4, opts.MaxThreads)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("not a pdf"))
	assert.Error(t, err)
}
