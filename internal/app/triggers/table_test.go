package triggers_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/eco-agent/internal/app/triggers"
)

func TestDefaultTableIsValid(t *testing.T) {
	table, err := triggers.DefaultTable()
	require.NoError(t, err)

	require.Len(t, table.Practices, 3)
	assert.Equal(t, triggers.PracticeGrounding, table.Ordering.CrisisPractice)
	assert.Equal(t, triggers.PracticeBox, table.Ordering.ShortPractice)

	// phrases are stored normalized
	assert.Contains(t, table.KeywordSets["ansiedade"], "inquietacao")
	assert.Contains(t, table.KeywordSets["dispenza"], "bencao dos centros")
}

func TestDefaultTableTopicsAreDisjoint(t *testing.T) {
	table, err := triggers.DefaultTable()
	require.NoError(t, err)

	owner := map[string]string{}
	for _, topic := range table.Topics {
		for _, trig := range topic.Triggers {
			prev, dup := owner[trig]
			assert.False(t, dup, "trigger %q in %s and %s", trig, prev, topic.Module)
			owner[trig] = topic.Module
		}
	}
}

func TestLoadTableRejectsInvalidTables(t *testing.T) {
	cases := map[string]string{
		"unknown practice": `
keyword_sets: {a: [x]}
practices:
  - {id: YOGA, module: y.txt, keywords: [{set: a, weight: 1}]}
`,
		"unknown keyword set": `
keyword_sets: {a: [x]}
practices:
  - {id: BOX, module: b.txt, keywords: [{set: missing, weight: 1}]}
`,
		"missing module": `
keyword_sets: {a: [x]}
practices:
  - {id: BOX, keywords: [{set: a, weight: 1}]}
`,
		"duplicate practice": `
keyword_sets: {a: [x]}
practices:
  - {id: BOX, module: b.txt}
  - {id: BOX, module: c.txt}
`,
		"ordering references undeclared practice": `
practices:
  - {id: BOX, module: b.txt}
ordering: {crisis_practice: GROUNDING, crisis_intensity: 8}
`,
		"topic without triggers": `
practices:
  - {id: BOX, module: b.txt}
topics:
  - {module: t.txt}
`,
		"no practices": `
keyword_sets: {a: [x]}
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := triggers.LoadTable(strings.NewReader(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, triggers.ErrInvalidTable)
		})
	}
}

func TestLoadTableRejectsUnknownFields(t *testing.T) {
	_, err := triggers.LoadTable(strings.NewReader(`
practices:
  - {id: BOX, module: b.txt, wieght: 2}
`))
	require.Error(t, err)
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keyword_sets:
  caixa: [Respiração em Caixa]
practices:
  - id: BOX
    module: BOX.txt
    keywords: [{set: caixa, weight: 0.7}]
`), 0o644))

	table, err := triggers.LoadTableFile(path)
	require.NoError(t, err)

	d := triggers.NewDetector(table)
	got := d.Detect(triggers.Input{Text: "quero fazer respiracao em caixa"}, triggers.DefaultThreshold)
	require.Len(t, got, 1)
	assert.Equal(t, 0.7, got[0].Score)

	_, err = triggers.LoadTableFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
