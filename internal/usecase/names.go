package usecase

import (
	"context"
	"regexp"
	"strings"

	"AlbionPulse/pkg/cache"
)

var tierPrefix = regexp.MustCompile(`^T(\d)_`)

// NamesService resolves identifiers to display names through the stable
// cache tier. Names change only on game patches.
type NamesService struct {
	cache cache.Service
	ttl   cache.TTLPolicy
}

// NewNamesService creates a NamesService.
func NewNamesService(c cache.Service, ttl cache.TTLPolicy) *NamesService {
	return &NamesService{cache: c, ttl: ttl}
}

// ResolveItemName maps an item code like "T4_BAG" to a display name.
func (s *NamesService) ResolveItemName(ctx context.Context, itemID string) string {
	key := cache.NewKey("names").Str("item", itemID).String()

	var name string
	if err := s.cache.Get(ctx, key, &name); err == nil && name != "" {
		return name
	}

	name = prettify(itemID)
	_ = s.cache.Set(ctx, key, name, s.ttl.For(cache.TierStable))
	return name
}

// ResolveBuildName maps a build signature to a display name.
func (s *NamesService) ResolveBuildName(ctx context.Context, signature string) string {
	key := cache.NewKey("names").Str("build", signature).String()

	var name string
	if err := s.cache.Get(ctx, key, &name); err == nil && name != "" {
		return name
	}

	name = prettify(signature)
	_ = s.cache.Set(ctx, key, name, s.ttl.For(cache.TierStable))
	return name
}

// prettify turns "T4_2H_CLAYMORE" into "2h Claymore (T4)". It is the
// fallback when no localized name is known.
func prettify(code string) string {
	if code == "" {
		return ""
	}
	tier := ""
	if m := tierPrefix.FindStringSubmatch(code); m != nil {
		tier = " (T" + m[1] + ")"
		code = tierPrefix.ReplaceAllString(code, "")
	}
	words := strings.Split(strings.ToLower(code), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + tier
}
