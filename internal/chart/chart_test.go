package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/opdusage/internal/model"
)

func slabs(counts ...int) []model.SlabCount {
	labels := []string{"<0%", "1-10%", "11-20%", "21-30%", "31-40%", "41-50%",
		"51-60%", "61-70%", "71-80%", "81-90%", "91-100%", ">100%"}
	out := make([]model.SlabCount, len(labels))
	for i, l := range labels {
		out[i].Label = l
		if i < len(counts) {
			out[i].Count = counts[i]
		}
	}
	return out
}

func TestRenderSlabs_PNG(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSlabs(&buf, slabs(3, 0, 1, 0, 0, 7, 0, 0, 0, 0, 2, 4), Options{Width: 800, Height: 400})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())
}

func TestRenderSlabs_AllZero(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSlabs(&buf, slabs(), DefaultOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderSlabs_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderSlabs(&buf, nil, DefaultOptions()))
}

func TestCountTicks(t *testing.T) {
	ticks := countTicks(1)
	require.Len(t, ticks, 2)
	assert.Equal(t, "1", ticks[1].Label)

	ticks = countTicks(25)
	assert.Equal(t, 0.0, ticks[0].Value)
	assert.Equal(t, 25.0, ticks[len(ticks)-1].Value)
	assert.LessOrEqual(t, len(ticks), 12)
}
