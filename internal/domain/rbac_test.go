package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Secretary ")
	assert.True(t, ok)
	assert.Equal(t, RoleSecretary, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestCapabilitySet(t *testing.T) {
	set := NewCapabilitySet(
		Capability{Resource: ResourceLeave, Action: ActionRead},
		Capability{Resource: ResourceLeave, Action: ActionApprove},
	)

	assert.True(t, set.Can(ResourceLeave, ActionApprove))
	assert.False(t, set.Can(ResourceLeave, ActionDelete))
	assert.False(t, set.Elevated())

	set[Capability{Resource: ResourceLeave, Action: ActionManage}.Key()] = struct{}{}
	assert.True(t, set.Elevated())
	assert.Len(t, set.Keys(), 3)
}
