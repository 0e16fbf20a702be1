package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/eco-agent/internal/textnorm"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"Olá, Eco!":               "ola, eco!",
		"  Bênção   dos  Centros": "bencao dos centros",
		"INQUIETAÇÃO\tno peito":   "inquietacao no peito",
		"só tenho 2 min":          "so tenho 2 min",
		"Náusea e nó na garganta": "nausea e no na garganta",
	}

	for in, want := range cases {
		assert.Equal(t, want, textnorm.Normalize(in), "input %q", in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Estou MUITO ansiosa, só tenho 2 min",
		"Respiração em caixa 4-4-4-4",
		"Ação, reação e coração",
		"  ",
		"já é hora de ir, até amanhã",
	}

	for _, in := range inputs {
		once := textnorm.Normalize(in)
		assert.Equal(t, once, textnorm.Normalize(once), "input %q", in)
	}
}

func TestContainsAny(t *testing.T) {
	text := textnorm.Normalize("Sinto um aperto no peito")

	hit, ok := textnorm.ContainsAny(text, []string{"falta de ar", "aperto no peito"})
	assert.True(t, ok)
	assert.Equal(t, "aperto no peito", hit)

	_, ok = textnorm.ContainsAny(text, []string{"", "taquicardia"})
	assert.False(t, ok)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, textnorm.WordCount("   "))
	assert.Equal(t, 3, textnorm.WordCount("oi  tudo\tbem"))
}
