package main

import (
	"path/filepath"
	"strings"
)

// _plainLanguage is used for files with unrecognized extensions.
const _plainLanguage = "plaintext"

// _languages maps lowercase file extensions to language names.
var _languages = map[string]string{
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".py":    "python",
	".rb":    "ruby",
	".go":    "go",
	".rs":    "rust",
	".java":  "java",
	".cpp":   "cpp",
	".c":     "c",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".sh":    "bash",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".md":    "markdown",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".sql":   "sql",
}

// languageFor infers the language of a file from its extension.
func languageFor(path string) string {
	if lang, ok := _languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return _plainLanguage
}
