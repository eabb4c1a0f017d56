package mcpserver

// BlockFormatContract describes the index block grammar Ansuz maintains
// inside documents, so LLM consumers know which spans they must not edit.
const BlockFormatContract = `# Ansuz Index Block Format

Ansuz writes auto-generated index blocks into Markdown documents and rewrites
them on every update cycle. Hand edits inside a block are lost on the next
cycle; edit anything outside the blocks freely.

## Structure

` + "```" + `markdown
> [!example] Index of Deep learning
> - [[notes/backprop]]
> - **[[notes/attention]]**: Attention is all you need
> - **Transformers**
>     - [[notes/transformers/bert]]
> ^indexof-deep-learning
` + "```" + `

## Rules

1. A block is a run of lines each prefixed with the block-quote marker ` + "`>`" + `.
2. The first line is a callout header: ` + "`" + `> [!example] <title>` + "`" + ` for an
   index, ` + "`" + `> [!tldr] <title>` + "`" + ` for a meta-index.
3. The final line is exactly ` + "`" + `> ^indexof-<slug>` + "`" + `, where the slug is
   letters and digits separated by single hyphens. A whole-vault index uses
   the fixed slug ` + "`" + `root000` + "`" + `.
4. One block exists per distinct tag path a document indexes; several blocks
   may coexist in one document.
5. Entries in bold are priority documents; nested entries mirror the tag
   hierarchy below the indexed path.
6. Removing the index tag from a document's frontmatter makes the next update
   cycle delete the corresponding block.

## Requesting an index

Give a document the tag ` + "`" + `<path>/index` + "`" + ` in its frontmatter to have Ansuz
maintain an index of every document tagged under ` + "`" + `<path>` + "`" + `. Use
` + "`" + `<path>/metaindex` + "`" + ` for a summary of the index documents one level below
` + "`" + `<path>` + "`" + `. The bare tags ` + "`" + `index` + "`" + ` and ` + "`" + `metaindex` + "`" + ` cover the whole vault.
`
