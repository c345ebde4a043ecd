// Package lexical holds the bag-of-words machinery of the engine: tokenization,
// the catalog-wide TF-IDF vocabulary used for keywords and clustering, and a
// deterministic feature-hashing embedder that needs no model download.
package lexical
