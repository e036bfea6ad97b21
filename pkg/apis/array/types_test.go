package array

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitiators_IsFCWWNMatch(t *testing.T) {
	initiators := NewInitiators("", []string{"10000000C9934D9F", " 10000000c9934da0 "})

	assert.True(t, initiators.IsFCWWNMatch([]string{"10000000c9934d9f"}))
	assert.True(t, initiators.IsFCWWNMatch([]string{"x", "10000000C9934DA0"}))
	assert.False(t, initiators.IsFCWWNMatch([]string{"10000000c9934da1"}))
	assert.False(t, NewInitiators("iqn", nil).IsFCWWNMatch([]string{"10000000c9934d9f"}))
}

func TestInitiators_IsISCSIIQNMatch(t *testing.T) {
	initiators := NewInitiators(" iqn.1994-05.com.redhat:node1 ", nil)

	assert.True(t, initiators.IsISCSIIQNMatch("iqn.1994-05.com.redhat:node1"))
	assert.True(t, initiators.IsISCSIIQNMatch("iqn.1994-05.com.redhat:node1  "))
	assert.False(t, initiators.IsISCSIIQNMatch("iqn.1994-05.com.redhat:node2"))
	assert.True(t, initiators.IsISCSIIQNIn([]string{"a", "iqn.1994-05.com.redhat:node1"}))
	assert.False(t, NewInitiators("", nil).IsISCSIIQNMatch(""))
}

func TestVolume_IsCopyOf(t *testing.T) {
	vol := &Volume{CopySourceID: "s1", CopySourceKind: ObjectKindSnapshot}
	assert.True(t, vol.IsCopyOf(ObjectKindSnapshot, "s1"))
	assert.False(t, vol.IsCopyOf(ObjectKindVolume, "s1"))
	assert.False(t, vol.IsCopyOf(ObjectKindSnapshot, "s2"))

	untyped := &Volume{CopySourceID: "s1"}
	assert.True(t, untyped.IsCopyOf(ObjectKindVolume, "s1"))
	assert.False(t, (&Volume{}).IsCopyOf(ObjectKindVolume, ""))
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrVolumeNotFound("v1"))

	assert.True(t, IsKind(err, ErrorKindVolumeNotFound))
	assert.False(t, IsKind(err, ErrorKindSnapshotNotFound))
	assert.True(t, errors.Is(err, &Error{Kind: ErrorKindVolumeNotFound}))
	assert.False(t, IsKind(errors.New("plain"), ErrorKindVolumeNotFound))

	cause := errors.New("cable unplugged")
	mapErr := ErrMapping("v1", "h1", cause)
	assert.ErrorIs(t, mapErr, cause)
	kind, ok := KindOf(mapErr)
	assert.True(t, ok)
	assert.Equal(t, ErrorKindMapping, kind)
}
