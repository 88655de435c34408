package mcpserver

const contractURI = "quire://document-format"

// DocumentFormatContract describes the document content format and the
// derived fields that LLM consumers should expect when reading or editing
// documents.
const DocumentFormatContract = `# Quire Document Format Contract

A Quire document is a record with an id, a title, a category and a single
content field. The content is lightweight HTML produced by a rich-text editor.

## Content

- Use block elements for structure: ` + "`<h1>`-`<h3>`, `<p>`, `<ul>`/`<ol>` with `<li>`" + `.
- Inline formatting: ` + "`<strong>`, `<em>`, `<u>`, `<a href>`" + `.
- Line breaks in the content become line breaks in the line view; keep one
  block element per line where possible.
- ` + "`<script>` and `<style>`" + ` content is ignored by word counts and search.
- Plain text without markup is valid content.

## Derived fields (read-only)

- ` + "`wordCount`" + `: whitespace-separated words of the text with markup removed.
- ` + "`charCount`" + `: characters of the raw content, markup included.
- ` + "`updatedAt`" + `: set on every save.

## Lines

` + "`get_lines`" + ` returns the plain text (markup removed) split on newlines. Line
numbers start at 1; offsets are character offsets into the plain text. An empty
document has exactly one empty line.

## Editing

- ` + "`update_content`" + ` replaces the whole content of the current document.
  Pass the ` + "`checksum`" + ` from the previous read to avoid overwriting a concurrent
  change.
- Every content change is saved immediately and can be reverted with ` + "`undo`" + `.
  Up to 50 versions are kept per document.
- Titles and categories are not versioned.
`
