// Package action writes animation actions as keyframe tables.
package action

import (
	"path"
	"strconv"
	"strings"

	"github.com/Faultbox/lite3d-exporter/internal/assets"
	"github.com/Faultbox/lite3d-exporter/internal/host"
)

// Animated properties, matched as data path suffixes.
var animated = []string{"location", "rotation_quaternion", "scale"}

var axes = [...]string{"X", "Y", "Z", "W"}

const bonePrefix = `pose.bones["`

// Frames maps a frame number to channel values, e.g. "12.0" -> "locationX" -> 1.5.
type Frames map[string]map[string]float32

func (f Frames) set(frame, channel string, v float32) {
	keys, ok := f[frame]
	if !ok {
		keys = make(map[string]float32)
		f[frame] = keys
	}
	keys[channel] = v
}

// Name returns the engine-side action name.
func Name(a *host.Action) string {
	return a.Name + ".action"
}

// Path returns the asset-relative path of the action JSON.
func Path(a *host.Action) string {
	return path.Join("actions", a.Name+".json")
}

// Build collects object and per-bone keyframes.
func Build(a *host.Action) (objectFrames Frames, boneFrames map[string]Frames) {
	objectFrames = make(Frames)
	boneFrames = make(map[string]Frames)

	for _, fc := range a.FCurves {
		prop, ok := animatedProperty(fc.DataPath)
		if !ok || fc.ArrayIndex < 0 || fc.ArrayIndex >= len(axes) {
			continue
		}

		frames := objectFrames
		if bone, ok := boneName(fc.DataPath); ok {
			frames = boneFrames[bone]
			if frames == nil {
				frames = make(Frames)
				boneFrames[bone] = frames
			}
		}

		channel := prop + axes[fc.ArrayIndex]
		for _, kf := range fc.Keyframes {
			frames.set(FrameKey(kf[0]), channel, kf[1])
		}
	}
	return objectFrames, boneFrames
}

func animatedProperty(dataPath string) (string, bool) {
	for _, p := range animated {
		if strings.HasSuffix(dataPath, p) {
			i := strings.LastIndex(dataPath, ".")
			return dataPath[i+1:], true
		}
	}
	return "", false
}

func boneName(dataPath string) (string, bool) {
	_, rest, ok := strings.Cut(dataPath, bonePrefix)
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(rest, `"]`)
	return name, true
}

// FrameKey formats a frame number the way the engine expects, always with a
// fractional part: 1 -> "1.0", 2.5 -> "2.5".
func FrameKey(frame float32) string {
	s := strconv.FormatFloat(float64(frame), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Export writes actions/<name>.json.
func Export(a *host.Action, layout assets.Layout) error {
	objectFrames, boneFrames := Build(a)

	// A map keeps keys sorted in the output.
	doc := map[string]any{
		"Name":     Name(a),
		"MinFrame": a.FrameRange[0],
		"MaxFrame": a.FrameRange[1],
	}
	if len(boneFrames) > 0 {
		doc["BonesFrames"] = boneFrames
	}
	if len(objectFrames) > 0 {
		doc["Frames"] = objectFrames
	}
	return layout.WriteJSON(Path(a), doc)
}
