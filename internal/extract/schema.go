package extract

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const chapterSchema = `{
  "type": "object",
  "properties": {
    "title":      {"type": ["string", "null"]},
    "grammar":    {"type": ["array", "null"]},
    "vocabulary": {"type": ["array", "null"]}
  }
}`

const grammarSchema = `{
  "type": "object",
  "properties": {
    "point":              {"type": ["string", "null"]},
    "german_explanation": {"type": ["string", "null"]},
    "examples": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    }
  }
}`

const vocabularySchema = `{
  "type": "object",
  "properties": {
    "word":               {"type": ["string", "null"]},
    "translation_german": {"type": ["string", "null"]},
    "example":            {"type": ["string", "null"]}
  }
}`

var (
	chapterValidator    = mustCompile("chapter.json", chapterSchema)
	grammarValidator    = mustCompile("grammar.json", grammarSchema)
	vocabularyValidator = mustCompile("vocabulary.json", vocabularySchema)
)

func mustCompile(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}
