package light

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfarm-labs/garden-firmware/internal/model"
	"github.com/openfarm-labs/garden-firmware/internal/pin"
	"github.com/openfarm-labs/garden-firmware/internal/queue"
)

func TestLightScenario5(t *testing.T) {
	ctx := context.Background()
	sink := pin.NewMemorySink()
	pub := queue.NewBounded[int](4)
	c := NewController(32, sink, pub)

	c.Apply(ctx, model.LightCommand{})
	assert.True(t, c.On())
	assert.True(t, sink.Level(32))
	v, ok := pub.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Apply(ctx, model.LightCommand{State: "OFF"})
	assert.False(t, c.On())
	assert.False(t, sink.Level(32))
	v, ok = pub.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, 0, v)

	c.Apply(ctx, model.LightCommand{State: "weird"})
	assert.False(t, c.On(), "unrecognized state must not change the light")
	v, ok = pub.Pop(ctx)
	require.True(t, ok, "unrecognized state still re-publishes current state")
	assert.Equal(t, 0, v)
}

func TestLightForceOnTwiceStaysOn(t *testing.T) {
	ctx := context.Background()
	sink := pin.NewMemorySink()
	pub := queue.NewBounded[int](4)
	c := NewController(7, sink, pub)

	c.Apply(ctx, model.LightCommand{State: "on"})
	c.Apply(ctx, model.LightCommand{State: "ON"})
	assert.True(t, c.On())
	assert.True(t, sink.Level(7))

	_, ok := pub.Pop(ctx)
	require.True(t, ok)
	_, ok = pub.Pop(ctx)
	require.True(t, ok)
}
