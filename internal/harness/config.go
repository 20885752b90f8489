package harness

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// Config controls the simulated heap, collector, and signal registrations.
type Config struct {
	HeapTop     int   // young region top, in words
	HeapLimit   int   // young region limit, in words
	CollectPlan []int // scripted post-collection headroom per interrupt

	Managed []int // signals registered runtime-managed before the run
	Ignored []int // signals registered ignored before the run
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		HeapTop:   4096,
		HeapLimit: 0,
	}
}

// ParseConfig reads a JSON configuration:
//
//	{
//	  "heap":      {"top": 4096, "limit": 0},
//	  "collector": {"plan": [1, 64]},
//	  "signals":   {"managed": [2, 15], "ignored": [1]}
//	}
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return config, nil
	}

	if !gjson.ValidBytes(data) {
		return config, fmt.Errorf("invalid json: %q", data)
	}

	jsonData := gjson.ParseBytes(data)
	if v := jsonData.Get("heap.top"); v.Exists() {
		config.HeapTop = int(v.Int())
	}
	if v := jsonData.Get("heap.limit"); v.Exists() {
		config.HeapLimit = int(v.Int())
	}
	jsonData.Get("collector.plan").ForEach(func(_, value gjson.Result) bool {
		config.CollectPlan = append(config.CollectPlan, int(value.Int()))
		return true
	})
	jsonData.Get("signals.managed").ForEach(func(_, value gjson.Result) bool {
		config.Managed = append(config.Managed, int(value.Int()))
		return true
	})
	jsonData.Get("signals.ignored").ForEach(func(_, value gjson.Result) bool {
		config.Ignored = append(config.Ignored, int(value.Int()))
		return true
	})

	if config.HeapTop <= config.HeapLimit {
		return config, fmt.Errorf("heap top (%d) must be above the limit (%d)", config.HeapTop, config.HeapLimit)
	}
	return config, nil
}
