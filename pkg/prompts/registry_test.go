package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/refstats/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInPrompt(t *testing.T) {
	pr := NewPromptRegistry(map[string]string{"team": "Man United"})
	list := pr.ListPrompts()
	require.Len(t, list, 1)
	assert.Equal(t, "referee_report", list[0].Name)

	res, err := pr.GetPrompt("referee_report", nil)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.Text
	assert.Contains(t, text, `team "Man United" and seasons "all"`)
	assert.NotContains(t, text, "{{")

	res, err = pr.GetPrompt("referee_report", map[string]string{"team": "Arsenal", "seasons": "2019-2020"})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.Text, `team "Arsenal" and seasons "2019-2020"`)

	_, err = pr.GetPrompt("missing", nil)
	assert.Error(t, err)
}

func TestLoadDirAndSave(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "derby.json"),
		[]byte(`{"description":"Derby games","arguments":[{"name":"rival","required":true}],"text":"Games against {{rival}}"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644))

	pr := NewPromptRegistry(nil)
	require.NoError(t, pr.LoadDir(dir))
	names := []string{}
	for _, p := range pr.ListPrompts() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"derby", "referee_report"}, names)

	_, err := pr.GetPrompt("derby", nil)
	assert.ErrorContains(t, err, "requires argument rival")
	res, err := pr.GetPrompt("derby", map[string]string{"rival": "Man City"})
	require.NoError(t, err)
	assert.Equal(t, "Games against Man City", res.Messages[0].Content.Text)

	saved := Template{Prompt: protocol.Prompt{Name: "season_trend"}, Text: "Trend"}
	require.NoError(t, pr.SavePrompt(saved))
	assert.FileExists(t, filepath.Join(dir, "season_trend.json"))

	_, err = pr.GetPromptPath("../etc")
	assert.Error(t, err)
	assert.Error(t, NewPromptRegistry(nil).SavePrompt(saved))
}
