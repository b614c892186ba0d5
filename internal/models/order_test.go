package models_test

import (
	"testing"

	"shopsmart/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		allowed  bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusShipped, true}, // forward jump
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{models.OrderStatusShipped, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusProcessing, false},
		{models.OrderStatusShipped, models.OrderStatusProcessing, false}, // backwards
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
		{models.OrderStatusProcessing, models.OrderStatusProcessing, false}, // same state
		{models.OrderStatusPending, models.OrderStatus("unknown"), false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusCancellable(t *testing.T) {
	assert.True(t, models.OrderStatusPending.Cancellable())
	assert.True(t, models.OrderStatusProcessing.Cancellable())
	assert.False(t, models.OrderStatusShipped.Cancellable())
	assert.False(t, models.OrderStatusDelivered.Cancellable())
	assert.False(t, models.OrderStatusCancelled.Cancellable())
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, models.RoleAdmin.IsAdmin())
	assert.False(t, models.RoleUser.IsAdmin())
	assert.True(t, models.RoleUser.Valid())
	assert.True(t, models.RoleAdmin.Valid())
	assert.False(t, models.Role("superuser").Valid())
}
