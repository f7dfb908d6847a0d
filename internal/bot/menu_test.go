package bot

import (
	"strings"
	"testing"

	"github.com/memohai/bucketlink/internal/callback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFileMenuOneRowPerKey(t *testing.T) {
	t.Parallel()

	codec := newCodec()
	keys := []string{"b.png", "a.txt", "x_y_z.tar.gz", strings.Repeat("deep/", 15) + "file.bin"}
	menu, err := NewPresenter(codec).RenderFileMenu(keys)
	require.NoError(t, err)

	assert.Equal(t, FileMenuText, menu.Text)
	require.Len(t, menu.Rows, len(keys))
	assert.Equal(t, len(keys), menu.Buttons())
	for i, row := range menu.Rows {
		require.Len(t, row, 1)
		assert.Equal(t, keys[i], row[0].Label)
		payload, err := codec.Decode(row[0].Payload)
		require.NoError(t, err)
		assert.Equal(t, callback.Browse(keys[i]), payload)
	}
}

func TestRenderFileMenuScenario(t *testing.T) {
	t.Parallel()

	menu, err := NewPresenter(newCodec()).RenderFileMenu([]string{"a.txt", "b.png"})
	require.NoError(t, err)
	assert.Equal(t, [][]Button{
		{{Label: "a.txt", Payload: "browse_a.txt"}},
		{{Label: "b.png", Payload: "browse_b.png"}},
	}, menu.Rows)
}

func TestRenderFileMenuRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewPresenter(newCodec()).RenderFileMenu(nil)
	assert.ErrorIs(t, err, ErrEmptyMenu)
}

func TestRenderDurationMenu(t *testing.T) {
	t.Parallel()

	menu, err := NewPresenter(newCodec()).RenderDurationMenu("a.txt")
	require.NoError(t, err)
	assert.Equal(t, DurationMenuText, menu.Text)
	assert.Equal(t, [][]Button{
		{{Label: "24 Hours", Payload: "link_24_a.txt"}},
		{{Label: "Always Available", Payload: "link_perm_a.txt"}},
	}, menu.Rows)
}
