package elasticsearch

// DefaultAlias is the default alias under which the live products index is
// exposed. Physical indices are generation-named and swapped behind it.
const DefaultAlias = "products"

// indexMapping is the full settings+mappings body for a products generation
// index: language analysis for ranked search, an n-gram subfield for partial
// matching, and a completion subfield for autocomplete.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "filter": {
        "english_stop": {
          "type": "stop",
          "stopwords": "_english_"
        },
        "english_stemmer": {
          "type": "stemmer",
          "language": "english"
        },
        "word_parts": {
          "type": "word_delimiter_graph",
          "preserve_original": true
        }
      },
      "analyzer": {
        "catalog_text": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "word_parts", "english_stop", "english_stemmer"]
        },
        "catalog_ngram": {
          "type": "custom",
          "tokenizer": "catalog_ngram_tokenizer",
          "filter": ["lowercase", "english_stop", "english_stemmer"]
        }
      },
      "tokenizer": {
        "catalog_ngram_tokenizer": {
          "type": "ngram",
          "min_gram": 2,
          "max_gram": 3,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "product_id":  { "type": "keyword" },
      "seller_id":   { "type": "keyword" },
      "product_name": {
        "type": "text",
        "analyzer": "catalog_text",
        "fields": {
          "keyword":    { "type": "keyword" },
          "ngram":      { "type": "text", "analyzer": "catalog_ngram", "search_analyzer": "catalog_text" },
          "completion": { "type": "completion", "analyzer": "catalog_text" }
        }
      },
      "description": { "type": "text", "analyzer": "catalog_text" },
      "price":       { "type": "float" },
      "category": {
        "type": "text",
        "analyzer": "catalog_text",
        "fields": { "keyword": { "type": "keyword" } }
      },
      "in_stock":    { "type": "integer" },
      "status":      { "type": "keyword" },
      "seller_name": {
        "type": "text",
        "analyzer": "catalog_text",
        "fields": { "keyword": { "type": "keyword" } }
      },
      "avg_rating":  { "type": "float" }
    }
  }
}`
