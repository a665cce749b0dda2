package models

import "time"

// ResourceKind tells how a resource's Value is interpreted.
type ResourceKind string

const (
	ResourceKindURL  ResourceKind = "Url"
	ResourceKindCode ResourceKind = "Code"
	ResourceKindText ResourceKind = "Text"
)

// ResourceKinds lists every accepted kind.
var ResourceKinds = []ResourceKind{ResourceKindURL, ResourceKindCode, ResourceKindText}

// CodeLanguage is the language of a Code resource.
type CodeLanguage string

const (
	CodeLanguageHTML       CodeLanguage = "Html"
	CodeLanguageCSS        CodeLanguage = "Css"
	CodeLanguageJavascript CodeLanguage = "Javascript"
	CodeLanguageTypescript CodeLanguage = "Typescript"
	CodeLanguageReact      CodeLanguage = "React"
	CodeLanguageVue        CodeLanguage = "Vue"
	CodeLanguageAngular    CodeLanguage = "Angular"
	CodeLanguageSvelte     CodeLanguage = "Svelte"
	CodeLanguagePHP        CodeLanguage = "PHP"
	CodeLanguagePython     CodeLanguage = "Python"
	CodeLanguageJava       CodeLanguage = "Java"
	CodeLanguageCSharp     CodeLanguage = "CSharp"
	CodeLanguageRuby       CodeLanguage = "Ruby"
	CodeLanguageGo         CodeLanguage = "Go"
	CodeLanguageRust       CodeLanguage = "Rust"
	CodeLanguageSQL        CodeLanguage = "Sql"
	CodeLanguageMarkdown   CodeLanguage = "Markdown"
	CodeLanguageJSON       CodeLanguage = "Json"
)

// CodeLanguages lists every accepted code language.
var CodeLanguages = []CodeLanguage{
	CodeLanguageHTML, CodeLanguageCSS, CodeLanguageJavascript, CodeLanguageTypescript,
	CodeLanguageReact, CodeLanguageVue, CodeLanguageAngular, CodeLanguageSvelte,
	CodeLanguagePHP, CodeLanguagePython, CodeLanguageJava, CodeLanguageCSharp,
	CodeLanguageRuby, CodeLanguageGo, CodeLanguageRust, CodeLanguageSQL,
	CodeLanguageMarkdown, CodeLanguageJSON,
}

// Resource is a leaf content record attached to at most one folder.
type Resource struct {
	ID           string        `json:"id" bson:"_id" db:"id"`
	FolderID     *string       `json:"folderId" bson:"folderId" db:"folder_id"` // nil = root level
	Name         string        `json:"name" bson:"name" db:"name"`
	Description  *string       `json:"description" bson:"description" db:"description"`
	Kind         ResourceKind  `json:"kind" bson:"kind" db:"kind"`
	CodeLanguage *CodeLanguage `json:"codeLanguage,omitempty" bson:"codeLanguage,omitempty" db:"code_language"`
	Value        *string       `json:"value" bson:"value" db:"value"`
	Favorite     bool          `json:"favorite" bson:"favorite" db:"favorite"`
	CreatedOn    time.Time     `json:"createdOn" bson:"createdOn" db:"created_on"`
}

// IsInRoot returns true if the resource is not attached to any folder.
func (r *Resource) IsInRoot() bool {
	return r.FolderID == nil
}
