package scene

import (
	"github.com/Faultbox/lite3d-exporter/internal/config"
	"github.com/Faultbox/lite3d-exporter/internal/host"
)

// Light custom properties overriding the configured attenuation defaults.
const (
	PropAttenuationConstant  = "AttenuationConstant"
	PropAttenuationLinear    = "AttenuationLinear"
	PropAttenuationQuadratic = "AttenuationQuadratic"
	PropInfluenceDistance    = "InfluenceDistance"
	PropInfluenceMinRadiance = "InfluenceMinRadiance"
)

// Light is the engine light block of a node.
type Light struct {
	Type        string
	Name        string
	Diffuse     [3]float32
	Radiance    float32
	LightSize   *float32     `json:",omitempty"`
	Attenuation *Attenuation `json:",omitempty"`
	SpotFactor  *SpotFactor  `json:",omitempty"`
	Direction   [3]float32
	Position    [3]float32
}

// Attenuation is the distance falloff of point and spot lights.
type Attenuation struct {
	Constant             float32
	Linear               float32
	Quadratic            float32
	InfluenceDistance    float32
	InfluenceMinRadiance float32
}

// SpotFactor holds spot cone angles in radians.
type SpotFactor struct {
	AngleInnerCone float32
	AngleOuterCone float32
}

var lightTypes = map[string]string{
	"POINT": "Point",
	"SUN":   "Directional",
	"SPOT":  "Spot",
}

// exportLight converts a host light. Unsupported kinds return nil.
func exportLight(o *host.Object, cfg config.LightConfig) *Light {
	l := o.Light
	typ, ok := lightTypes[l.Type]
	if !ok {
		return nil
	}

	out := &Light{
		Type:      typ,
		Name:      o.Name + l.Name,
		Diffuse:   l.Color,
		Radiance:  l.Energy,
		Direction: [3]float32{0, 0, -1},
	}

	if l.Type == "POINT" || l.Type == "SPOT" {
		var size float32
		out.LightSize = &size
		out.Attenuation = &Attenuation{
			Constant:             l.Properties.FloatOr(PropAttenuationConstant, cfg.DefaultConstantAttenuation),
			Linear:               l.Properties.FloatOr(PropAttenuationLinear, cfg.DefaultLinearAttenuation),
			Quadratic:            l.Properties.FloatOr(PropAttenuationQuadratic, cfg.DefaultQuadraticAttenuation),
			InfluenceDistance:    l.Properties.FloatOr(PropInfluenceDistance, cfg.DefaultInfluenceDistance),
			InfluenceMinRadiance: l.Properties.FloatOr(PropInfluenceMinRadiance, cfg.DefaultInfluenceMinRadiance),
		}
	}
	if l.Type == "SPOT" {
		out.SpotFactor = &SpotFactor{
			AngleInnerCone: l.SpotSize * (1 - l.SpotBlend),
			AngleOuterCone: l.SpotSize,
		}
	}
	return out
}
