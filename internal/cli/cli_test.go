package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ECO_ASSETS_DIR", "")
	t.Setenv("ECO_TRIGGERS_FILE", "")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDetectCommand(t *testing.T) {
	out, err := run(t, "detect", "estou muito ansioso, só tenho 2 min")
	require.NoError(t, err)
	assert.Regexp(t, `^BOX\s`, out)

	out, err = run(t, "detect", "--json", "--intensity", "9", "estou ansiosa demais")
	require.NoError(t, err)

	var resp struct {
		Practices []struct {
			PracticeID string `json:"practice_id"`
		} `json:"practices"`
		Scores []json.RawMessage `json:"scores"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Practices)
	assert.Equal(t, "GROUNDING", resp.Practices[0].PracticeID)
	assert.Len(t, resp.Scores, 3)
}

func TestGreetCommand(t *testing.T) {
	out, err := run(t, "greet", "--hour", "15", "--name", "Ana", "oi")
	require.NoError(t, err)
	assert.Contains(t, out, "[greeting band=afternoon tone=reavaliacao]")
	assert.Contains(t, out, "Boa tarde, Ana.")

	out, err = run(t, "greet", "preciso de ajuda com meu projeto")
	require.NoError(t, err)
	assert.Contains(t, out, "not a greeting or farewell")
}

func TestPromptCommand(t *testing.T) {
	out, err := run(t, "prompt", "--module", "RESPIRACAO_GUIADA_BOX.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "## MANIFESTO FONTE DA ECO")
	assert.Contains(t, out, "## MODULO: RESPIRACAO_GUIADA_BOX.txt")

	out, err = run(t, "prompt", "--for", "tenho vergonha de mim", "--intensity", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "## MODULO: eco_emo_vergonha_combate.txt")

	_, err = run(t, "prompt", "--assets-dir", t.TempDir())
	assert.Error(t, err)
}
