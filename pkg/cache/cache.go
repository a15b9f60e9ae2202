package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

// Cache is a query-result cache. A miss is (nil, false, nil); backend
// failures surface as errors so callers can treat them as misses.
type Cache interface {
	Get(ctx context.Context, key string) (*types.PipelineResult, bool, error)
	Set(ctx context.Context, key string, result *types.PipelineResult) error
	Clear(ctx context.Context) error
	Close() error
}

// Key derives the cache key for a pipeline execution. Every input that can
// change the result set participates: the same query by a different role, or
// under a different framework, must never share an entry.
func Key(query string, role types.CanonicalRole, k int, framework policy.Framework) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d\x00%s", strings.TrimSpace(query), role, k, framework)))
	return hex.EncodeToString(h[:])
}
