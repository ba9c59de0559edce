package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfileCache_Defaults(t *testing.T) {
	c := NewProfileCache(Options{Addr: "127.0.0.1:1"})
	defer c.Close()

	assert.Equal(t, 10*time.Minute, c.ttl)
	assert.Equal(t, "ipinspection:profile:email:a@b", c.key("email:a@b"))
}

func TestProfileCache_UnreachableIsMiss(t *testing.T) {
	c := NewProfileCache(Options{Addr: "127.0.0.1:1", Namespace: "t", Timeout: 100 * time.Millisecond})
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.Set(ctx, "open_id:ou_1", "p-1")
	id, ok := c.Get(ctx, "open_id:ou_1")

	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Error(t, c.Check(ctx))
}
