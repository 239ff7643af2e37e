package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("normalizes email and defaults to retail", func(t *testing.T) {
		c, err := NewCustomer("Erika Mustermann", " Erika@Example.DE ", "")
		require.NoError(t, err)
		assert.Equal(t, "erika@example.de", c.Email)
		assert.Equal(t, CustomerTypeRetail, c.CustomerType)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewCustomer("Erika", "not-an-email", CustomerTypeRetail)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewCustomer("Erika", "", CustomerType("vip"))
		assert.Error(t, err)
	})
}

func TestCustomer_Clone(t *testing.T) {
	c, err := NewCustomer("Erika", "erika@example.de", CustomerTypeBusiness)
	require.NoError(t, err)

	clone := c.Clone()
	clone.Name = "Max"

	assert.Equal(t, "Erika", c.Name)
	assert.Equal(t, c.ID, clone.ID)
}

func TestNewWarehouse(t *testing.T) {
	w, err := NewWarehouse(" main ", "Hauptlager")
	require.NoError(t, err)
	assert.Equal(t, "MAIN", w.Code)
	assert.True(t, w.IsActive)

	_, err = NewWarehouse("bad code!", "x")
	assert.Error(t, err)
}

func TestNewSupplier(t *testing.T) {
	_, err := NewSupplier("   ")
	assert.Error(t, err)

	s, err := NewSupplier("Acme GmbH")
	require.NoError(t, err)
	assert.Equal(t, "Acme GmbH", s.Name)
}
