package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIMEDefaults(t *testing.T) {
	langs := []Language{
		{Name: "rust", CommentTokens: []string{"//"}},
		{Name: "markdown", CommentTokens: []string{"<!--"}, AutoIMEScopes: []string{"markup"}},
		{Name: "json"},
		{Name: "html", BlockCommentTokens: []BlockComment{{Start: "<!--", End: "-->"}}},
	}

	ApplyIMEDefaults(langs)

	want := [][]string{
		{"string", "comment"},
		{"markup"},
		nil,
		nil,
	}
	for i, lang := range langs {
		if diff := cmp.Diff(want[i], lang.AutoIMEScopes); diff != "" {
			t.Errorf("%s auto_ime_scopes mismatch (-want +got):\n%s", lang.Name, diff)
		}
	}
}

func TestApplyIMEDefaults_Idempotent(t *testing.T) {
	langs := []Language{{Name: "go", CommentTokens: []string{"//"}}}

	ApplyIMEDefaults(langs)
	first := append([]string{}, langs[0].AutoIMEScopes...)
	ApplyIMEDefaults(langs)

	assert.Equal(t, first, langs[0].AutoIMEScopes)
}

func TestApplyIMEDefaults_DoesNotAlias(t *testing.T) {
	langs := []Language{
		{Name: "a", CommentTokens: []string{"#"}},
		{Name: "b", CommentTokens: []string{"#"}},
	}
	ApplyIMEDefaults(langs)

	langs[0].AutoIMEScopes[0] = "mutated"
	assert.Equal(t, "string", langs[1].AutoIMEScopes[0])
	assert.Equal(t, "string", DefaultIMEScopes[0])
}

func TestDefaultLanguageConfig(t *testing.T) {
	lc, err := DefaultLanguageConfig()
	require.NoError(t, err)
	require.NoError(t, ValidateLanguages(lc))

	tests := []struct {
		name   string
		scopes []string
	}{
		{"rust", []string{"string", "comment"}},
		{"python", []string{"string", "comment"}},
		{"markdown", []string{"markup", "text"}},
		{"git-commit", []string{"text"}},
		{"json", nil},
	}
	for _, tt := range tests {
		lang, ok := lc.Find(tt.name)
		require.True(t, ok, tt.name)
		if diff := cmp.Diff(tt.scopes, lang.AutoIMEScopes); diff != "" {
			t.Errorf("%s auto_ime_scopes mismatch (-want +got):\n%s", tt.name, diff)
		}
	}

	_, ok := lc.Find("cobol")
	assert.False(t, ok)
}

func TestLanguage_IMEEnabledIn(t *testing.T) {
	lang := Language{Name: "rust", AutoIMEScopes: []string{"string", "comment"}}

	assert.True(t, lang.IMEEnabledIn("comment"))
	assert.True(t, lang.IMEEnabledIn("comment.line.double-slash"))
	assert.True(t, lang.IMEEnabledIn("string.quoted.double"))
	assert.False(t, lang.IMEEnabledIn("commentary"))
	assert.False(t, lang.IMEEnabledIn("keyword.control"))
	assert.False(t, (&Language{Name: "json"}).IMEEnabledIn("string"))
}

func TestUserLanguageConfig_Missing(t *testing.T) {
	lc, err := UserLanguageConfig(filepath.Join(t.TempDir(), "languages.toml"))
	require.NoError(t, err)

	want, err := DefaultLanguageConfig()
	require.NoError(t, err)
	if diff := cmp.Diff(want, lc); diff != "" {
		t.Errorf("language table mismatch (-want +got):\n%s", diff)
	}
}

func TestUserLanguageConfig_Merge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.toml")
	content := `
[[language]]
name = "rust"
auto_ime_scopes = ["comment"]

[[language]]
name = "python"
comment_tokens = ["#", "##"]

[[language]]
name = "json"
comment_tokens = ["//"]

[[language]]
name = "elvish"
scope = "source.elvish"
file_types = ["elv"]
comment_tokens = ["#"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	lc, err := UserLanguageConfig(path)
	require.NoError(t, err)

	rust, ok := lc.Find("rust")
	require.True(t, ok)
	assert.Equal(t, []string{"comment"}, rust.AutoIMEScopes, "explicit user scopes win over defaults")
	assert.Equal(t, "source.rust", rust.Scope, "unset fields keep the built-in value")

	python, ok := lc.Find("python")
	require.True(t, ok)
	assert.Equal(t, []string{"#", "##"}, python.CommentTokens)
	assert.Equal(t, []string{"string", "comment"}, python.AutoIMEScopes)

	jsonLang, ok := lc.Find("json")
	require.True(t, ok)
	assert.Equal(t, []string{"string", "comment"}, jsonLang.AutoIMEScopes, "comment tokens added by the user enable defaults")

	elvish, ok := lc.Find("elvish")
	require.True(t, ok)
	assert.Equal(t, []string{"string", "comment"}, elvish.AutoIMEScopes)
	assert.Equal(t, "elvish", lc.Languages[len(lc.Languages)-1].Name)
}

func TestUserLanguageConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.yaml")
	content := `
language:
  - name: lua
    comment_tokens: ["--"]
    block_comment_tokens:
      - start: "--[["
        end: "]]"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	lc, err := UserLanguageConfig(path)
	require.NoError(t, err)

	lua, ok := lc.Find("lua")
	require.True(t, ok)
	assert.Equal(t, []BlockComment{{Start: "--[[", End: "]]"}}, lua.BlockCommentTokens)
	assert.Equal(t, []string{"string", "comment"}, lua.AutoIMEScopes)
}

func TestUserLanguageConfig_SchemaRejects(t *testing.T) {
	tests := map[string]string{
		"bad name": `
[[language]]
name = "Not A Name"
`,
		"bad scope": `
[[language]]
name = "rust"
auto_ime_scopes = ["Comment"]
`,
		"empty comment token": `
[[language]]
name = "rust"
comment_tokens = [""]
`,
		"repeated scope": `
[[language]]
name = "rust"
auto_ime_scopes = ["comment", "comment"]
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "languages.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			_, err := UserLanguageConfig(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestValidateLanguages_Duplicates(t *testing.T) {
	lc := &LanguageConfig{Languages: []Language{
		{Name: "go"},
		{Name: "rust"},
		{Name: "go"},
	}}

	err := ValidateLanguages(lc)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "language[2].name", verrs[0].Field)
}

func TestValidateLanguages_Empty(t *testing.T) {
	assert.NoError(t, ValidateLanguages(&LanguageConfig{}))
}
