package config

// mergeConfigs merges override configuration into base. Zero values in
// override leave the base value in place.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Election != "" {
		result.Election = override.Election
	}
	if override.CacheDir != "" {
		result.CacheDir = override.CacheDir
	}

	result.Server = mergeServer(result.Server, override.Server)

	if override.Listing.MaxDepth != 0 {
		result.Listing.MaxDepth = override.Listing.MaxDepth
	}
	if len(override.Listing.Exclude) > 0 {
		result.Listing.Exclude = override.Listing.Exclude
	}

	if override.Watch.Interval != "" {
		result.Watch.Interval = override.Watch.Interval
	}
	if override.Watch.MetricsAddr != "" {
		result.Watch.MetricsAddr = override.Watch.MetricsAddr
	}

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(result.Extensions)+len(override.Extensions))
		for key, value := range result.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{})
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			// Otherwise just replace
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeServer(base, override ServerConfig) ServerConfig {
	result := base

	if override.Host != "" {
		result.Host = override.Host
	}
	if override.Port != 0 {
		result.Port = override.Port
	}
	if override.User != "" {
		result.User = override.User
		result.Password = override.Password
	} else if override.Password != "" {
		result.Password = override.Password
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.DisableEPSV {
		result.DisableEPSV = true
	}

	return result
}
