package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/topology"
)

// Redis key layout, one hash per record:
//
//	FABRIC_LINK|<id>                 a, b, a_addr, b_addr
//	FABRIC_ROUTE|<node>|<prefix>     nexthop, ifname (comma-separated
//	                                 lists when ECMP adds members)
const (
	linkTable  = "FABRIC_LINK"
	routeTable = "FABRIC_ROUTE"
	keySep     = "|"
)

// RedisRuntime is a Runtime that records the plan in a Redis database,
// in the style of a config-DB-provisioned switch stack.
type RedisRuntime struct {
	client *redis.Client
	ctx    context.Context

	nextLink int
	links    map[int]string // linkID -> hash key
}

// NewRedisRuntime connects to Redis and returns a runtime writing to
// the given DB. The caller owns the lifetime; call Close when done.
func NewRedisRuntime(ctx context.Context, addr string, db int) (*RedisRuntime, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisRuntime{
		client: client,
		ctx:    ctx,
		links:  make(map[int]string),
	}, nil
}

// Close releases the Redis connection.
func (r *RedisRuntime) Close() error {
	return r.client.Close()
}

func (r *RedisRuntime) CreateLink(a, b topology.NodeID) (int, error) {
	id := r.nextLink
	r.nextLink++
	key := linkTable + keySep + fmt.Sprint(id)
	if err := r.client.HSet(r.ctx, key, "a", a.String(), "b", b.String()).Err(); err != nil {
		return 0, fmt.Errorf("writing %s: %w", key, err)
	}
	r.links[id] = key
	return id, nil
}

func (r *RedisRuntime) AssignAddress(linkID, endpoint int, addr string, prefixLen int) error {
	key, ok := r.links[linkID]
	if !ok {
		return fmt.Errorf("assign address: unknown link id %d", linkID)
	}
	field := "a_addr"
	if endpoint == 1 {
		field = "b_addr"
	}
	cidr := fmt.Sprintf("%s/%d", addr, prefixLen)
	if err := r.client.HSet(r.ctx, key, field, cidr).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// InstallRoute appends the entry to the node's route record. Repeated
// installs for the same prefix extend the nexthop and ifname lists,
// which is how ECMP groups are expressed.
func (r *RedisRuntime) InstallRoute(node topology.NodeID, entry routing.Entry) error {
	key := routeTable + keySep + node.String() + keySep + entry.CIDR()

	nexthops, err := r.client.HGet(r.ctx, key, "nexthop").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	ifnames, err := r.client.HGet(r.ctx, key, "ifname").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}

	nexthops = appendListField(nexthops, entry.NextHop)
	ifnames = appendListField(ifnames, entry.Egress.String())

	if err := r.client.HSet(r.ctx, key, "nexthop", nexthops, "ifname", ifnames).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func appendListField(existing, value string) string {
	if existing == "" {
		return value
	}
	for _, v := range strings.Split(existing, ",") {
		if v == value {
			return existing
		}
	}
	return existing + "," + value
}
