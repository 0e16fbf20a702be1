package prompt

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/eco-agent/assets"
)

func fullFS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, f := range Fragments {
		fsys[f.File] = &fstest.MapFile{Data: []byte("corpo de " + f.File + "\n")}
	}
	fsys["modulos/RESPIRACAO_GUIADA_BOX.txt"] = &fstest.MapFile{Data: []byte("inspire 4")}
	fsys["modulos/ORIENTACAO_GROUNDING.txt"] = &fstest.MapFile{Data: []byte("5-4-3-2-1")}
	return fsys
}

func TestBuildCanonicalOrder(t *testing.T) {
	out, err := NewAssembler(fullFS()).Build(context.Background())
	require.NoError(t, err)

	sections := strings.Split(out, "\n\n## ")
	require.Len(t, sections, len(Fragments))

	assert.True(t, strings.HasPrefix(out, "## MANIFESTO FONTE DA ECO\n\ncorpo de eco_manifesto_fonte.txt"))
	assert.True(t, strings.HasSuffix(out, "## DESPEDIDA DA ECO\n\ncorpo de eco_farewell.txt"))

	last := -1
	for _, f := range Fragments {
		idx := strings.Index(out, "## "+f.Header+"\n\n")
		require.GreaterOrEqual(t, idx, 0, f.Header)
		assert.Greater(t, idx, last, "%s out of order", f.Header)
		last = idx
	}
}

func TestBuildFailsOnMissingFragment(t *testing.T) {
	for _, f := range Fragments {
		fsys := fullFS()
		delete(fsys, f.File)

		out, err := NewAssembler(fsys).Build(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFragmentMissing)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Contains(t, err.Error(), f.File)
		assert.Empty(t, out)
	}
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(fullFS()).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithModules(t *testing.T) {
	a := NewAssembler(fullFS())
	ctx := context.Background()

	out, err := a.WithModules(ctx, "base", []string{"RESPIRACAO_GUIADA_BOX.txt", "ORIENTACAO_GROUNDING.txt", "RESPIRACAO_GUIADA_BOX.txt"})
	require.NoError(t, err)
	assert.Equal(t,
		"base\n\n## MODULO: RESPIRACAO_GUIADA_BOX.txt\n\ninspire 4\n\n## MODULO: ORIENTACAO_GROUNDING.txt\n\n5-4-3-2-1",
		out)

	out, err = a.WithModules(ctx, "base", nil)
	require.NoError(t, err)
	assert.Equal(t, "base", out)

	_, err = a.WithModules(ctx, "base", []string{"NAO_EXISTE.txt"})
	assert.ErrorIs(t, err, ErrFragmentMissing)
}

func TestEmbeddedAssetsAreComplete(t *testing.T) {
	a := NewAssembler(assets.FS)

	out, err := a.BuildWithModules(context.Background(), []string{
		"ORIENTACAO_GROUNDING.txt",
		"RESPIRACAO_GUIADA_BOX.txt",
		"DR_DISPENZA_BENCAO_CENTROS_LITE.txt",
		"eco_vulnerabilidade_mitos.txt",
		"eco_emo_vergonha_combate.txt",
		"eco_vulnerabilidade_defesas.txt",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "## PADRÕES PROIBIDOS DA ECO")
	assert.Contains(t, out, "## MODULO: DR_DISPENZA_BENCAO_CENTROS_LITE.txt")
}

func TestContentFSFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eco_farewell.txt"), []byte("até logo"), 0o644))

	raw, err := fs.ReadFile(ContentFS(dir), "eco_farewell.txt")
	require.NoError(t, err)
	assert.Equal(t, "até logo", string(raw))

	_, err = fs.Stat(ContentFS(""), "eco_farewell.txt")
	assert.NoError(t, err)
}
