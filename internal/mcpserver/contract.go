package mcpserver

// EditingContract describes the link-document synchronization rules that
// LLM consumers should understand before editing documents.
const EditingContract = `# mdlink Link Document Editing Contract

A document is either **unlinked** (content lives only in mdlink's own
store) or **linked** (content mirrors an external file or URL, the
"target").

## Rules

1. **Classification is syntactic.** A target containing ` + "`://`" + ` is a
   remote reference; anything else is a local file path.
2. **Opening or switching a target** marks the document changed only when
   the target reference itself changes. Mirroring the target's content
   into the document is never treated as a user edit.
3. **A missing target file is not an error.** It yields empty content so
   a new note can be authored at that path.
4. **Edits identical to the current content are dropped.** They raise no
   dirty flag and trigger no write.
5. **Real edits** update the document and mark it dirty. For *local*
   link targets the content is also written back to the file:
   - a read-only target produces a warning and no write attempt;
   - a failed write produces a warning;
   - in both cases the edit is retained in the document.
6. **Remote targets are never written back.** Edits live in mdlink's
   store only.
7. **Relative resources** (images, etc.) in the Markdown resolve against
   the target's location, not against mdlink's working directory. Do not
   rewrite relative links to absolute ones; the rendering surface gets a
   base reference instead.

## Encoding

UTF-8, byte-for-byte round-trip: no BOM is added and line endings are
left untouched.
`
