package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get(OutreachFile, "hunter-system")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.MaxLength}}")

	_, err = Get("discord.json", "hunter-system")
	assert.ErrorContains(t, err, "not embedded")

	_, err = Get(OutreachFile, "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet(BrainFile, "classify-description"))
	})
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Hi {{.Name}}, {{.Company}} is hiring. Thanks, {{.Name}}")
	assert.Equal(t, []string{"Name", "Company"}, got)
	assert.Empty(t, Placeholders("no placeholders {{ .Spaced }}"))
}

func TestFormat(t *testing.T) {
	result := Format("Hi {{.Name}}, I applied to {{.Company}}", map[string]string{
		"Name":    "Sarah",
		"Company": "Acme Health",
	})
	assert.Equal(t, "Hi Sarah, I applied to Acme Health", result)

	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", map[string]string{}))
}

func TestFormat_ValuesAreLiteral(t *testing.T) {
	out := Format("Note: {{.Text}}", map[string]string{"Text": "saved $1 and {{.Name}}"})
	assert.Equal(t, "Note: saved $1 and {{.Name}}", out)
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render(OutreachFile, "value-cold-email", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Text")

	out, err := Render(OutreachFile, "value-cold-email", map[string]string{"Text": "I built FHIR pipelines"})
	require.NoError(t, err)
	assert.Contains(t, out, "I built FHIR pipelines")
}

func TestFallbackSentenceIsFixed(t *testing.T) {
	out, err := Render(OutreachFile, "value-none", nil)
	require.NoError(t, err)
	assert.Equal(t, "No specific background provided. Focus on genuine interest in the role.", out)
}

func TestOutreachTemplatesPresent(t *testing.T) {
	for _, k := range []string{"hunter-system", "hunter-user", "farmer-system", "farmer-user", "refine-system", "refine-user"} {
		template, err := Get(OutreachFile, k)
		require.NoError(t, err, k)
		assert.NotEmpty(t, Placeholders(template), k)
	}
}

func TestContentTemplatesPresent(t *testing.T) {
	for _, k := range []string{"post-user", "script-user"} {
		template, err := Get(ContentFile, k)
		require.NoError(t, err, k)
		assert.ElementsMatch(t, []string{"Topic", "Source"}, Placeholders(template), k)
	}
	for _, k := range []string{"post-system", "script-system"} {
		_, err := Get(ContentFile, k)
		require.NoError(t, err, k)
	}
}
