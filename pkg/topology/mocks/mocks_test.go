package mocks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	topology "github.com/tws-core/earbud-core/pkg/topology"
)

func TestMockHandsetServicePage(t *testing.T) {
	m := NewMockHandsetService(t)
	m.EXPECT().DisableFindRoleScanning().Return()
	m.EXPECT().Page("AA:BB:CC").Return(nil)

	m.DisableFindRoleScanning()
	err := m.Page("AA:BB:CC")
	assert.NoError(t, err)
}

func TestMockMessageClientRoleChanged(t *testing.T) {
	m := NewMockMessageClient(t)
	m.EXPECT().RoleChanged(topology.RolePrimary).Return()

	m.RoleChanged(topology.RolePrimary)
}
