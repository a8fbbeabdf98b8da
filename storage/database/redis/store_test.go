package redisdb_test

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/redis"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/storetest"
)

// redisAddr returns TEST_REDIS_ADDR when set, or the address of an in-process server.
func redisAddr(t *testing.T) string {
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return miniredis.RunT(t).Addr()
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) school.Store {
		rdb := redisdb.Open(core.RedisConfig{Addr: redisAddr(t)})
		prefix := "test:" + uuid.NewString() + ":"
		t.Cleanup(func() {
			ctx := context.Background()
			iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
			for iter.Next(ctx) {
				_ = rdb.Del(ctx, iter.Val()).Err()
			}
			_ = rdb.Close()
		})
		st := redisdb.NewStore(rdb, prefix)
		require.NoError(t, st.Ping(context.Background()))
		return st
	})
}
