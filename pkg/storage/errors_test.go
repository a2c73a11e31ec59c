package storage

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := NotFound("a/b.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "object not found: a/b.txt", err.Error())

	wrapped := fmt.Errorf("reading: %w", PermissionDenied("x", os.ErrPermission))
	assert.ErrorIs(t, wrapped, ErrPermissionDenied)
	assert.ErrorIs(t, wrapped, os.ErrPermission)

	assert.Equal(t, ErrConnection, KindOf(Connection(errors.New("dial tcp"))))
	assert.Equal(t, ErrIO, KindOf(IO(errors.New("short write"))))
	assert.Equal(t, ErrGeneric, KindOf(errors.New("plain")))
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		-1:              "N/A",
		0:               "0 B",
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
		3 << 30:         "3.0 GB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBytes(in), "FormatBytes(%d)", in)
	}
}
