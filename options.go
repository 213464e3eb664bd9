// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uno

import "strconv"

// Options is the flat string-keyed configuration map of spec.md §6. Every
// ingredient that accepts configuration reads from the same map; NewDriver
// parses the keys it and the ingredients use once, before the outer loop
// begins, and returns a ConfigurationError on a malformed value or an
// unsupported choice. Keys that nothing reads are ignored, not rejected.
type Options map[string]string

// Get returns the raw string value for key, and whether it was present.
func (o Options) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o[key]
	return v, ok
}

// GetDefault returns the value for key, or def if absent.
func (o Options) GetDefault(key, def string) string {
	if v, ok := o.Get(key); ok {
		return v
	}
	return def
}

// Float parses key as a float64, returning def if absent.
func (o Options) Float(key string, def float64) (float64, error) {
	v, ok := o.Get(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, newError(ConfigurationError, err, "option %q must be a float", key)
	}
	return f, nil
}

// Int parses key as an int, returning def if absent.
func (o Options) Int(key string, def int) (int, error) {
	v, ok := o.Get(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, newError(ConfigurationError, err, "option %q must be an integer", key)
	}
	return n, nil
}

// NormKind selects the vector norm used for residuals and progress measures
// (spec.md §6 "residual_norm", "progress_norm").
type NormKind int

const (
	NormL1 NormKind = iota
	NormL2
	NormLInf
)

func parseNormKind(o Options, key string, def NormKind) (NormKind, error) {
	v, ok := o.Get(key)
	if !ok {
		return def, nil
	}
	switch v {
	case "L1":
		return NormL1, nil
	case "L2":
		return NormL2, nil
	case "Linf":
		return NormLInf, nil
	default:
		return def, newError(ConfigurationError, nil, "option %q must be one of L1, L2, Linf (got %q)", key, v)
	}
}

func vecNorm(kind NormKind, v []float64) float64 {
	switch kind {
	case NormL1:
		return norm1(v)
	case NormLInf:
		return normInf(v)
	default:
		return norm2(v)
	}
}
