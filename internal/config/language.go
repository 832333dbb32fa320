package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed languages.toml
var builtinLanguages string

// DefaultIMEScopes are assigned to languages that declare comment tokens but
// no explicit IME scopes.
var DefaultIMEScopes = []string{"string", "comment"}

// Language is one entry of the language table.
type Language struct {
	// Name identifies the language, e.g. "rust".
	Name string `toml:"name" json:"name" yaml:"name"`

	// Scope is the root syntax scope, e.g. "source.rust".
	Scope string `toml:"scope,omitempty" json:"scope,omitempty" yaml:"scope,omitempty"`

	// FileTypes are file extensions or names mapped to the language.
	FileTypes []string `toml:"file_types,omitempty" json:"file_types,omitempty" yaml:"file_types,omitempty"`

	// CommentTokens are line comment prefixes.
	CommentTokens []string `toml:"comment_tokens,omitempty" json:"comment_tokens,omitempty" yaml:"comment_tokens,omitempty"`

	// BlockCommentTokens are block comment delimiters.
	BlockCommentTokens []BlockComment `toml:"block_comment_tokens,omitempty" json:"block_comment_tokens,omitempty" yaml:"block_comment_tokens,omitempty"`

	// AutoIMEScopes are the syntax scopes in which the IME may be enabled
	// automatically.
	AutoIMEScopes []string `toml:"auto_ime_scopes,omitempty" json:"auto_ime_scopes,omitempty" yaml:"auto_ime_scopes,omitempty"`
}

// BlockComment is a pair of block comment delimiters.
type BlockComment struct {
	Start string `toml:"start" json:"start" yaml:"start"`
	End   string `toml:"end" json:"end" yaml:"end"`
}

// IMEEnabledIn reports whether scope falls under one of the language's IME
// scopes. "comment.line.double-slash" matches "comment".
func (l *Language) IMEEnabledIn(scope string) bool {
	for _, s := range l.AutoIMEScopes {
		if scope == s || strings.HasPrefix(scope, s+".") {
			return true
		}
	}
	return false
}

// LanguageConfig is the language table.
type LanguageConfig struct {
	Languages []Language `toml:"language" json:"language,omitempty" yaml:"language"`
}

// Find returns the language with the given name.
func (lc *LanguageConfig) Find(name string) (*Language, bool) {
	for i := range lc.Languages {
		if lc.Languages[i].Name == name {
			return &lc.Languages[i], true
		}
	}
	return nil, false
}

// ApplyIMEDefaults gives every language without explicit IME scopes and with
// comment tokens the default {"string", "comment"} scopes. Languages with
// explicit scopes are left untouched.
func ApplyIMEDefaults(langs []Language) {
	for i := range langs {
		lang := &langs[i]
		if len(lang.AutoIMEScopes) > 0 {
			continue
		}
		if len(lang.CommentTokens) > 0 {
			lang.AutoIMEScopes = slices.Clone(DefaultIMEScopes)
		}
	}
}

func decodeBuiltinLanguages() (*LanguageConfig, error) {
	lc := &LanguageConfig{}
	if _, err := toml.Decode(builtinLanguages, lc); err != nil {
		return nil, fmt.Errorf("decode built-in languages: %w", err)
	}
	return lc, nil
}

// DefaultLanguageConfig returns the built-in language table with IME
// defaults applied.
func DefaultLanguageConfig() (*LanguageConfig, error) {
	lc, err := decodeBuiltinLanguages()
	if err != nil {
		return nil, err
	}
	ApplyIMEDefaults(lc.Languages)
	return lc, nil
}

// UserLanguageConfig merges the user's language table at path over the
// built-in one, validates the result and applies IME defaults. A missing
// file yields the built-in table.
func UserLanguageConfig(path string) (*LanguageConfig, error) {
	if path == "" {
		path = LanguagesPath()
	}

	lc, err := decodeBuiltinLanguages()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read languages: %w", err)
	default:
		user := &LanguageConfig{}
		if err := decodeInto(path, data, user); err != nil {
			return nil, err
		}
		lc.Languages = mergeLanguages(lc.Languages, user.Languages)
	}

	if err := ValidateLanguages(lc); err != nil {
		return nil, fmt.Errorf("validate languages: %w", err)
	}

	// Defaults go on after the merge so explicit user scopes win.
	ApplyIMEDefaults(lc.Languages)
	return lc, nil
}

// mergeLanguages overlays user entries on base entries with the same name.
// Fields the user did not set keep the base value. New names are appended.
func mergeLanguages(base, user []Language) []Language {
	merged := slices.Clone(base)
	for _, u := range user {
		idx := slices.IndexFunc(merged, func(l Language) bool { return l.Name == u.Name })
		if idx < 0 {
			merged = append(merged, u)
			continue
		}
		dst := &merged[idx]
		if u.Scope != "" {
			dst.Scope = u.Scope
		}
		if u.FileTypes != nil {
			dst.FileTypes = u.FileTypes
		}
		if u.CommentTokens != nil {
			dst.CommentTokens = u.CommentTokens
		}
		if u.BlockCommentTokens != nil {
			dst.BlockCommentTokens = u.BlockCommentTokens
		}
		if u.AutoIMEScopes != nil {
			dst.AutoIMEScopes = u.AutoIMEScopes
		}
	}
	return merged
}
