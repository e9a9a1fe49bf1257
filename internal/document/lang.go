package document

import (
	"path/filepath"
	"strings"
)

// Lang represents a document language.
type Lang string

const (
	LangJava    Lang = "java"
	LangUnknown Lang = ""
)

// extMap maps file extensions to languages.
var extMap = map[string]Lang{
	".java": LangJava,
}

// DetectLang returns the language for a given file path based on extension.
func DetectLang(path string) Lang {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := extMap[ext]; ok {
		return l
	}
	return LangUnknown
}

// SupportedExtensions returns all file extensions classlens decorates.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extMap))
	for e := range extMap {
		exts = append(exts, e)
	}
	return exts
}
