// SPDX-License-Identifier: GPL-3.0-or-later

package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/rbmk-project/conduit/internal/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle_ActiveAfterTouch(t *testing.T) {
	o := activity.New()
	assert.True(t, o.Active(300*time.Second))
}

func TestOracle_WaitReturnsImmediatelyWhenActive(t *testing.T) {
	o := activity.New()
	ctx, cancel := context.WithTimeout(t.Context(), 1*time.Second)
	defer cancel()
	require.NoError(t, o.Wait(ctx, 300*time.Second))
}

func TestOracle_WaitRespectsContextCancellation(t *testing.T) {
	o := &activity.Oracle{}
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	err := o.Wait(ctx, 1*time.Nanosecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
