package download

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-bw/internal/model"
)

func TestReconcile(t *testing.T) {
	dir := filepath.Join("work", "temp")
	expected := filepath.Join(dir, "temp_id.mp4")
	in := func(name string) string { return filepath.Join(dir, name) }

	tests := []struct {
		name      string
		actual    []string
		action    PlanAction
		sources   []string
		leftovers []string
		err       error
	}{
		{
			name:   "expected file written directly",
			actual: []string{expected},
			action: ActionKeep,
		},
		{
			name:      "expected file plus leftover stream",
			actual:    []string{in("temp_id.f251.webm"), expected},
			action:    ActionKeep,
			leftovers: []string{in("temp_id.f251.webm")},
		},
		{
			name:    "single differently named file",
			actual:  []string{in("temp_id.webm")},
			action:  ActionRename,
			sources: []string{in("temp_id.webm")},
		},
		{
			name:    "separate video and audio streams",
			actual:  []string{in("temp_id.f251.webm"), in("temp_id.f137.mp4")},
			action:  ActionMerge,
			sources: []string{in("temp_id.f137.mp4"), in("temp_id.f251.webm")},
		},
		{
			name:    "duplicates collapse",
			actual:  []string{in("temp_id.mkv"), in("temp_id.mkv")},
			action:  ActionRename,
			sources: []string{in("temp_id.mkv")},
		},
		{
			name:   "nothing written",
			actual: nil,
			err:    model.ErrNothingDownloaded,
		},
		{
			name:   "only foreign files",
			actual: []string{in("temp_other.mp4"), filepath.Join("elsewhere", "temp_id.webm"), in("temp_idx.mp4")},
			err:    model.ErrNothingDownloaded,
		},
		{
			name:   "two untagged files",
			actual: []string{in("temp_id.webm"), in("temp_id.mkv")},
			err:    model.ErrAmbiguousOutput,
		},
		{
			name:   "three streams",
			actual: []string{in("temp_id.f137.mp4"), in("temp_id.f251.webm"), in("temp_id.f140.m4a")},
			err:    model.ErrAmbiguousOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Reconcile(expected, tt.actual)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, plan.Action)
			assert.Equal(t, expected, plan.Expected)
			assert.Equal(t, tt.sources, plan.Sources)
			assert.Equal(t, tt.leftovers, plan.Leftovers)
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	expected := filepath.Join("temp", "temp_id.mp4")
	actual := []string{filepath.Join("temp", "temp_id.f137.mp4"), filepath.Join("temp", "temp_id.f251.webm")}

	first, err1 := Reconcile(expected, actual)
	second, err2 := Reconcile(expected, actual)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Len(t, actual, 2, "input must not be modified")
}

func TestFormatSelector(t *testing.T) {
	assert.Equal(t, "bestvideo[height=720]+bestaudio/best[height=720]", FormatSelector(720))
	assert.Equal(t, "bestvideo[height=1080]+bestaudio/best[height=1080]", FormatSelector(1080))
}

func TestSplitTemplate(t *testing.T) {
	dir, stem := splitTemplate(filepath.Join("temp", "temp_id") + OutputExtTemplate)
	assert.Equal(t, "temp", dir)
	assert.Equal(t, "temp_id", stem)
}

func TestPlanAction_String(t *testing.T) {
	assert.Equal(t, "keep", ActionKeep.String())
	assert.Equal(t, "rename", ActionRename.String())
	assert.Equal(t, "merge", ActionMerge.String())
	assert.Equal(t, "PlanAction(9)", PlanAction(9).String())
}
