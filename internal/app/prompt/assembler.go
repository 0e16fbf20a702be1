// Package prompt builds Eco's system prompt from text fragments stored in a
// content root.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/PabloGalante/eco-agent/assets"
)

// ErrFragmentMissing is wrapped by every error caused by a fragment or module
// that could not be read.
var ErrFragmentMissing = errors.New("prompt fragment missing")

// ModuleDir is the directory, relative to the content root, holding practice
// and topic modules.
const ModuleDir = "modulos"

// Fragment is one section of the base prompt.
type Fragment struct {
	File   string
	Header string
}

// Fragments is the canonical order of the base prompt.
var Fragments = []Fragment{
	{"eco_manifesto_fonte.txt", "MANIFESTO FONTE DA ECO"},
	{"eco_principios_poeticos.txt", "PRINCÍPIOS POÉTICOS DA ECO"},
	{"eco_behavioral_instructions.txt", "INSTRUÇÕES COMPORTAMENTAIS DA ECO"},
	{"eco_core_personality.txt", "PERSONALIDADE PRINCIPAL DA ECO"},
	{"eco_guidelines_general.txt", "DIRETRIZES GERAIS DA ECO"},
	{"eco_emotions.txt", "EMOÇÕES DA ECO"},
	{"eco_examples_realistic.txt", "EXEMPLOS REALÍSTICOS DA ECO"},
	{"eco_generic_inputs.txt", "ENTRADAS GENÉRICAS DA ECO"},
	{"eco_forbidden_patterns.txt", "PADRÕES PROIBIDOS DA ECO"},
	{"eco_farewell.txt", "DESPEDIDA DA ECO"},
}

const sectionSep = "\n\n"

// Assembler reads fragments from an fs.FS. It holds no mutable state and is
// safe for concurrent use.
type Assembler struct {
	fsys fs.FS
}

func NewAssembler(fsys fs.FS) *Assembler {
	return &Assembler{fsys: fsys}
}

// Build returns the ten base fragments, each as "## HEADER\n\nbody", joined
// by a blank line. It never returns a partial prompt.
func (a *Assembler) Build(ctx context.Context) (string, error) {
	sections := make([]string, 0, len(Fragments))
	for _, f := range Fragments {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		body, err := a.read(f.File)
		if err != nil {
			return "", err
		}
		sections = append(sections, section(f.Header, body))
	}
	return strings.Join(sections, sectionSep), nil
}

// WithModules appends one "## MODULO: <file>" section per module, in the
// given order, skipping repeats. A missing module fails the whole call.
func (a *Assembler) WithModules(ctx context.Context, base string, modules []string) (string, error) {
	if len(modules) == 0 {
		return base, nil
	}

	var b strings.Builder
	b.WriteString(base)

	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true

		if err := ctx.Err(); err != nil {
			return "", err
		}

		body, err := a.read(path.Join(ModuleDir, m))
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteString(sectionSep)
		}
		b.WriteString(section("MODULO: "+m, body))
	}
	return b.String(), nil
}

// BuildWithModules is Build followed by WithModules.
func (a *Assembler) BuildWithModules(ctx context.Context, modules []string) (string, error) {
	base, err := a.Build(ctx)
	if err != nil {
		return "", err
	}
	return a.WithModules(ctx, base, modules)
}

func (a *Assembler) read(name string) (string, error) {
	raw, err := fs.ReadFile(a.fsys, name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFragmentMissing, name, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func section(header, body string) string {
	return "## " + header + "\n\n" + body
}

// ContentFS returns the embedded content root, or dir on disk when set.
func ContentFS(dir string) fs.FS {
	if dir == "" {
		return assets.FS
	}
	return os.DirFS(dir)
}
