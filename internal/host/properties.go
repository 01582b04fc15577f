package host

// Properties are custom key/value properties attached to a host data block.
type Properties map[string]any

// String returns a string property.
func (p Properties) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Float returns a numeric property.
func (p Properties) Float(key string) (float32, bool) {
	switch v := p[key].(type) {
	case float64:
		return float32(v), true
	case float32:
		return v, true
	case int:
		return float32(v), true
	case int64:
		return float32(v), true
	}
	return 0, false
}

// FloatOr returns a numeric property or def.
func (p Properties) FloatOr(key string, def float32) float32 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

// BoolOr returns a boolean property or def.
func (p Properties) BoolOr(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Vec3 returns a three-component numeric property.
func (p Properties) Vec3(key string) ([3]float32, bool) {
	var out [3]float32
	list, ok := p[key].([]any)
	if !ok || len(list) != 3 {
		return out, false
	}
	for i, item := range list {
		f, ok := Properties{"v": item}.Float("v")
		if !ok {
			return out, false
		}
		out[i] = f
	}
	return out, true
}
