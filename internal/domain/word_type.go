package domain

import (
	"fmt"
	"strings"
)

// WordType classifies the word a card refers to. It is used by selection
// filters only and has no effect on scheduling.
type WordType string

// Known word types.
const (
	WordTypeNoun          WordType = "noun"
	WordTypeVerb          WordType = "verb"
	WordTypeAdjective     WordType = "adjective"
	WordTypeAdverb        WordType = "adverb"
	WordTypePronoun       WordType = "pronoun"
	WordTypePreposition   WordType = "preposition"
	WordTypeConjunction   WordType = "conjunction"
	WordTypeInterjection  WordType = "interjection"
	WordTypeDeterminer    WordType = "determiner"
	WordTypeAuxiliaryVerb WordType = "auxiliary_verb"
	WordTypeModalVerb     WordType = "modal_verb"
	WordTypePhrasalVerb   WordType = "phrasal_verb"
	WordTypeIdiom         WordType = "idiom"
	WordTypePhrase        WordType = "phrase"
	WordTypeExpression    WordType = "expression"
	WordTypeVocabulary    WordType = "vocabulary"
	WordTypeGrammar       WordType = "grammar"
	WordTypeOther         WordType = "other"
)

var wordTypes = map[WordType]struct{}{
	WordTypeNoun: {}, WordTypeVerb: {}, WordTypeAdjective: {}, WordTypeAdverb: {},
	WordTypePronoun: {}, WordTypePreposition: {}, WordTypeConjunction: {},
	WordTypeInterjection: {}, WordTypeDeterminer: {}, WordTypeAuxiliaryVerb: {},
	WordTypeModalVerb: {}, WordTypePhrasalVerb: {}, WordTypeIdiom: {}, WordTypePhrase: {},
	WordTypeExpression: {}, WordTypeVocabulary: {}, WordTypeGrammar: {}, WordTypeOther: {},
}

// ErrInvalidWordType is returned for an unknown word type.
var ErrInvalidWordType = fmt.Errorf("%w: word type", ErrInvalidInput)

// ParseWordType converts a string into a WordType, ignoring case.
func ParseWordType(s string) (WordType, error) {
	wt := WordType(strings.ToLower(strings.TrimSpace(s)))
	if !wt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWordType, s)
	}
	return wt, nil
}

// Valid reports whether wt is a known word type.
func (wt WordType) Valid() bool {
	_, ok := wordTypes[wt]
	return ok
}
