package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rigScene = `
name: rig
objects:
  - name: Rig
    type: ARMATURE
    data: RigData
armatures:
  - name: RigData
    bones:
      - name: Spine
        head: [0, 0, 1]
        length: 2
        matrix: [[1, 0, 0], [0, 1, 0], [0, 0, 1]]
      - name: Neck
        parent: Spine
        head: [0, 0.5, 0]
        length: 0.5
        matrix: [[1, 0, 0], [0, 0, -1], [0, 1, 0]]
      - name: Tail
        parent: Spine
        length: 1
        matrix: [[1, 0, 0], [0, 1, 0], [0, 0, 1]]
`

func TestExportSkeleton(t *testing.T) {
	sc := parse(t, rigScene)
	s := exportSkeleton(sc.Objects[0].Armature)

	assert.Equal(t, "RigData", s.Name)
	require.Len(t, s.Bones, 1)

	spine := s.Bones[0]
	assert.Equal(t, "Spine", spine.Name)
	assert.Equal(t, [3]float32{0, 0, 1}, spine.Position)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, spine.Rotation)
	require.Len(t, spine.Bones, 2)

	neck := spine.Bones[0]
	assert.Equal(t, [3]float32{0, 2.5, 0}, neck.Position)
	assert.Equal(t, float32(0.5), neck.Length)
	// 90 degrees about X.
	assert.InDelta(t, 0.7071, neck.Rotation[0], 1e-3)
	assert.InDelta(t, 0.7071, neck.Rotation[3], 1e-3)

	assert.Equal(t, [3]float32{0, 2, 0}, spine.Bones[1].Position)
	assert.Empty(t, spine.Bones[1].Bones)
}

func TestExportSceneSkeleton(t *testing.T) {
	s, out := newSession(t, nil)
	_, err := s.ExportScene(parse(t, rigScene))
	require.NoError(t, err)

	var obj ObjectFile
	readJSON(t, filepath.Join(out, "objects", "Rig.json"), &obj)
	require.NotNil(t, obj.Root.Skeleton)
	assert.Equal(t, "Spine", obj.Root.Skeleton.Bones[0].Name)
	assert.Nil(t, obj.Root.Mesh)
}
