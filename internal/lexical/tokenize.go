package lexical

import (
	"regexp"
	"strings"
)

// tokenRE matches runs of two or more letters, digits or underscores.
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and returns its tokens with English stop words removed.
func Tokenize(text string) []string {
	raw := tokenRE.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// IsStopWord reports whether the lowercase token is an English stop word.
func IsStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}

var stopWords = toSet(
	"a", "about", "above", "across", "after", "afterwards", "again", "against", "all", "almost",
	"alone", "along", "already", "also", "although", "always", "am", "among", "amongst", "an",
	"and", "another", "any", "anyhow", "anyone", "anything", "anyway", "anywhere", "are", "around",
	"as", "at", "be", "became", "because", "become", "becomes", "becoming", "been", "before",
	"beforehand", "behind", "being", "below", "beside", "besides", "between", "beyond", "both",
	"but", "by", "can", "cannot", "could", "did", "do", "does", "doing", "done", "down", "due",
	"during", "each", "eg", "either", "else", "elsewhere", "enough", "etc", "even", "ever",
	"every", "everyone", "everything", "everywhere", "except", "few", "for", "former", "formerly",
	"from", "further", "get", "give", "had", "has", "have", "he", "hence", "her", "here",
	"hereafter", "hereby", "herein", "hers", "herself", "him", "himself", "his", "how", "however",
	"ie", "if", "in", "indeed", "into", "is", "it", "its", "itself", "just", "keep", "last",
	"latter", "least", "less", "made", "many", "may", "me", "meanwhile", "might", "mine", "more",
	"moreover", "most", "mostly", "much", "must", "my", "myself", "namely", "neither", "never",
	"nevertheless", "next", "no", "nobody", "none", "nor", "not", "nothing", "now", "nowhere",
	"of", "off", "often", "on", "once", "one", "only", "onto", "or", "other", "others",
	"otherwise", "our", "ours", "ourselves", "out", "over", "own", "per", "perhaps", "please",
	"put", "rather", "re", "same", "see", "seem", "seemed", "seeming", "seems", "several", "she",
	"should", "since", "so", "some", "somehow", "someone", "something", "sometime", "sometimes",
	"somewhere", "still", "such", "than", "that", "the", "their", "theirs", "them", "themselves",
	"then", "thence", "there", "thereafter", "thereby", "therefore", "therein", "these", "they",
	"this", "those", "though", "through", "throughout", "thru", "thus", "to", "together", "too",
	"toward", "towards", "under", "until", "up", "upon", "us", "very", "via", "was", "we", "well",
	"were", "what", "whatever", "when", "whence", "whenever", "where", "whereas", "whereby",
	"wherein", "whether", "which", "while", "who", "whoever", "whole", "whom", "whose", "why",
	"will", "with", "within", "without", "would", "yet", "you", "your", "yours", "yourself",
	"yourselves",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
