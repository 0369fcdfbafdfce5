package prompt_test

import (
	"strings"
	"testing"

	"github.com/nikhilbhutani/kidspeak/internal/prompt"
)

func TestRender(t *testing.T) {
	t.Parallel()

	got, err := prompt.Render("Say {{word}} in {{lang}}, {{word}}!", map[string]string{"word": "hola", "lang": "Spanish"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Say hola in Spanish, hola!" {
		t.Errorf("Render = %q", got)
	}
}

func TestRender_MissingVariables(t *testing.T) {
	t.Parallel()

	_, err := prompt.Render("{{a}} {{b}} {{c}}", map[string]string{"b": "x"})
	if err == nil || !strings.Contains(err.Error(), "a, c") {
		t.Errorf("err = %v, want missing a, c", err)
	}
}

func TestRender_DoesNotReexpandValues(t *testing.T) {
	t.Parallel()

	got, err := prompt.Render(`heard "{{transcript}}"`, map[string]string{"transcript": "{{target_word}}"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != `heard "{{target_word}}"` {
		t.Errorf("Render = %q", got)
	}
}

func TestScoringTemplates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tmpl prompt.Template
		want []string
	}{
		{prompt.AudioScoring, []string{"language_name", "target_word", "phonetic_line", "bands"}},
		{prompt.TextScoring, []string{"language_name", "target_word", "phonetic_line", "transcript", "similarity", "clarity_note", "bands"}},
	}
	for _, tt := range tests {
		got := strings.Join(tt.tmpl.Variables(), ",")
		if got != strings.Join(tt.want, ",") {
			t.Errorf("%s variables = %s, want %s", tt.tmpl.Name, got, strings.Join(tt.want, ","))
		}

		vars := make(map[string]string)
		for _, v := range tt.want {
			vars[v] = "<" + v + ">"
		}
		system, user, err := tt.tmpl.Execute(vars)
		if err != nil {
			t.Fatalf("%s Execute: %v", tt.tmpl.Name, err)
		}
		if strings.Contains(system+user, "{{") {
			t.Errorf("%s left placeholders unrendered", tt.tmpl.Name)
		}
		if !strings.Contains(user, "<target_word>") {
			t.Errorf("%s user prompt missing target word", tt.tmpl.Name)
		}
	}
}
