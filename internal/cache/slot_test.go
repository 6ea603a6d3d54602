package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlot(t *testing.T) *Slot {
	return NewSlot(filepath.Join(t.TempDir(), "cache"))
}

func fill(t *testing.T, s *Slot, data []byte) {
	require.NoError(t, os.WriteFile(s.Path(), data, 0644))
}

func TestReadIfValidCreatesEmptySlot(t *testing.T) {
	s := newSlot(t)

	data, ok, err := s.ReadIfValid(700)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestReadIfValidHit(t *testing.T) {
	s := newSlot(t)
	stored := bytes.Repeat([]byte{0xAB}, 500)
	fill(t, s, stored)

	data, ok, err := s.ReadIfValid(500)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, stored, data)
}

func TestReadIfValidLengthMismatch(t *testing.T) {
	s := newSlot(t)
	fill(t, s, bytes.Repeat([]byte{1}, 300))

	data, ok, err := s.ReadIfValid(700)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestReadIfValidZeroLength(t *testing.T) {
	s := newSlot(t)

	data, ok, err := s.ReadIfValid(0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, data)
}

func TestWriteReplacesLongerContent(t *testing.T) {
	s := newSlot(t)
	fill(t, s, bytes.Repeat([]byte("old"), 300))

	fresh := bytes.Repeat([]byte("n"), 100)
	require.NoError(t, s.Write(fresh))

	stored, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, fresh, stored)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	s := newSlot(t)
	fill(t, s, bytes.Repeat([]byte{1}, 300))

	fresh := bytes.Repeat([]byte{2}, 700)
	require.NoError(t, s.Write(fresh))

	data, ok, err := s.ReadIfValid(700)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fresh, data)
}

func TestWriteCreatesParentDir(t *testing.T) {
	s := NewSlot(filepath.Join(t.TempDir(), "state", "cache"))

	require.NoError(t, s.Write([]byte("doc")))
	assert.FileExists(t, s.Path())
}

func TestReadIfValidCreatesParentDir(t *testing.T) {
	s := NewSlot(filepath.Join(t.TempDir(), "state", "cache"))

	_, ok, err := s.ReadIfValid(3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.FileExists(t, s.Path())

	require.NoError(t, s.Write([]byte("doc")))
	data, ok, err := s.ReadIfValid(3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("doc"), data)
}

func TestReadIfValidParentIsFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0644))
	s := NewSlot(filepath.Join(parent, "cache"))

	_, _, err := s.ReadIfValid(1)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	assert.Equal(t, "create", ioErr.Op)
}

func TestReadIfValidUnopenable(t *testing.T) {
	// a directory in place of the slot file cannot be opened read-write
	dir := t.TempDir()
	s := NewSlot(dir)

	_, _, err := s.ReadIfValid(1)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	assert.Equal(t, dir, ioErr.Path)
}

func TestWriteUnopenable(t *testing.T) {
	dir := t.TempDir()
	s := NewSlot(dir)

	err := s.Write([]byte("doc"))

	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr), "got %v", err)
}
