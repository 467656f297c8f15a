package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	gaapi "gacore/pkg/gacore"
)

// loadRunRequestFromConfig reads a JSON run config. The returned set names
// the run flags the file provided.
func loadRunRequestFromConfig(path string) (gaapi.RunRequest, map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gaapi.RunRequest{}, nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return gaapi.RunRequest{}, nil, err
	}

	var req gaapi.RunRequest
	present := map[string]bool{}
	field := func(key, flagName string, assign func(any) bool) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if !assign(v) {
			return fmt.Errorf("invalid %s: %v", key, v)
		}
		present[flagName] = true
		return nil
	}

	fields := []struct {
		key, flag string
		assign    func(any) bool
	}{
		{"run_id", "run-id", func(v any) (ok bool) { req.RunID, ok = asString(v); return }},
		{"scape", "scape", func(v any) (ok bool) { req.Scape, ok = asString(v); return }},
		{"population", "pop", func(v any) (ok bool) { req.Population, ok = asInt(v); return }},
		{"dimensions", "dims", func(v any) (ok bool) { req.Dimensions, ok = asInt(v); return }},
		{"generations", "gens", func(v any) (ok bool) { req.Generations, ok = asInt(v); return }},
		{"mutation_rate", "rate", func(v any) (ok bool) { req.MutationRate, ok = asFloat64(v); return }},
		{"seed", "seed", func(v any) (ok bool) { req.Seed, ok = asUint64(v); return }},
		{"workers", "workers", func(v any) (ok bool) { req.Workers, ok = asInt(v); return }},
		{"fitness_goal", "goal", func(v any) (ok bool) { req.FitnessGoal, ok = asFloat64(v); return }},
	}
	for _, f := range fields {
		if err := field(f.key, f.flag, f.assign); err != nil {
			return gaapi.RunRequest{}, nil, err
		}
	}
	return req, present, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, false
	}
	return i, true
}

func asUint64(v any) (uint64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	u, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return u, true
}

func asFloat64(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}
