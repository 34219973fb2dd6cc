package manager

import "github.com/petrunin/cachefront/cache"

// mergeDefaults fills zero-valued scalar fields on specific with the
// corresponding field from global, leaving every explicitly-set field on
// specific untouched. "Set" for EvictionPolicy means "differs from
// cache.PolicyLRU", the type's zero value — the same convention
// cache.Configuration documents for its own zero-means-unset fields.
//
// Name is never inherited: a specific configuration always names itself.
func mergeDefaults(global, specific cache.Configuration) cache.Configuration {
	merged := specific

	if merged.MaxSize == 0 {
		merged.MaxSize = global.MaxSize
	}
	if merged.DefaultTTL == 0 {
		merged.DefaultTTL = global.DefaultTTL
	}
	if merged.MaxIdle == 0 {
		merged.MaxIdle = global.MaxIdle
	}
	if merged.ExpireAfterWrite == 0 {
		merged.ExpireAfterWrite = global.ExpireAfterWrite
	}
	if merged.ExpireAfterAccess == 0 {
		merged.ExpireAfterAccess = global.ExpireAfterAccess
	}
	if merged.RefreshAfterWrite == 0 {
		merged.RefreshAfterWrite = global.RefreshAfterWrite
	}
	if merged.EvictionPolicy == cache.PolicyLRU {
		merged.EvictionPolicy = global.EvictionPolicy
	}
	if merged.ConcurrencyLevel == 0 {
		merged.ConcurrencyLevel = global.ConcurrencyLevel
	}
	if !merged.RecordStats {
		merged.RecordStats = global.RecordStats
	}
	if !merged.AllowNullValues {
		merged.AllowNullValues = global.AllowNullValues
	}
	if !merged.WeakKeys {
		merged.WeakKeys = global.WeakKeys
	}
	if !merged.WeakValues {
		merged.WeakValues = global.WeakValues
	}
	if !merged.SoftValues {
		merged.SoftValues = global.SoftValues
	}

	return merged
}
