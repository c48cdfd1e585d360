package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentencesBasic(t *testing.T) {
	got := SplitSentences("Hello there. How are you? Fine!")
	assert.Equal(t, []string{"Hello there", "How are you", "Fine!"}, got)
}

func TestSplitSentencesKeepsFinalPunctuation(t *testing.T) {
	got := SplitSentences("One sentence only.")
	assert.Equal(t, []string{"One sentence only."}, got)
}

func TestSplitSentencesRunsOfTerminators(t *testing.T) {
	got := SplitSentences("Wow!!! That is great... Right?")
	assert.Equal(t, []string{"Wow", "That is great", "Right?"}, got)
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Nil(t, SplitSentences(""))
	assert.Nil(t, SplitSentences("   \n\t  "))
}

func TestSplitSentencesNoTerminator(t *testing.T) {
	got := SplitSentences("no punctuation at all")
	assert.Equal(t, []string{"no punctuation at all"}, got)
}

func TestSplitParagraphsFallback(t *testing.T) {
	got := splitParagraphs("first paragraph\n\nsecond paragraph")
	assert.Equal(t, []string{"first paragraph", "second paragraph"}, got)
}
