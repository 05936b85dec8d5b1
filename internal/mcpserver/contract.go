package mcpserver

// NoteFormatContract describes the canonical note shape the ingestion
// pipeline produces, so LLM consumers can write drafts that ingest cleanly.
const NoteFormatContract = `# Inkwell Note Format

Drafts are loose text files in the drafts directory. Ingestion turns each one
into a canonical note under the references directory.

## Canonical note

` + "```" + `markdown
---
created: 2026-10-14                 # ingestion date
created_at: "[[2026-10-14]]"        # link to the daily note
topics:                             # up to 3, each a wikilink
  - "[[健身]]"
aliases:                            # optional
  - "workout plan"
---
# 健身计划

Body text. Attachments point into the flat attachments directory:
![img](Attachments/健身计划-pic.png)

![[Backlinks]]
` + "```" + `

## Writing drafts

1. **Title** comes from the first H1, then a frontmatter ` + "`" + `title` + "`" + `, then the file name.
2. **Topics** come from a ` + "`" + `Topics: a, b` + "`" + ` (or ` + "`" + `主题: …` + "`" + `) marker line, the draft's
   frontmatter ` + "`" + `topics` + "`" + `, or the most frequent keywords. At most 3 are kept.
3. **Aliases** come from an ` + "`" + `Aliases: …` + "`" + ` (or ` + "`" + `别名: …` + "`" + `) marker line.
4. **Attachments** may be embedded as ` + "`" + `![[name.png]]` + "`" + `, ` + "`" + `![[name.png|alias]]` + "`" + ` or
   ` + "`" + `![alt](relative/path.png)` + "`" + `. They are moved into the attachments directory and
   renamed ` + "`" + `<title>-<name>` + "`" + `; references are rewritten.
5. **Output** is ` + "`" + `References/<title>.md` + "`" + `. An existing note is never overwritten; the
   name gets a ` + "`" + `-1` + "`" + `, ` + "`" + `-2` + "`" + `, … suffix instead.
6. **Encoding** is UTF-8.

## Attachment names

Attachments named after screenshots, pastes, camera or timestamp patterns
(` + "`" + `Screenshot 1.png` + "`" + `, ` + "`" + `IMG_1.jpg` + "`" + `, ` + "`" + `123.png` + "`" + `) are renamed by the
` + "`" + `format_attachments` + "`" + ` tool to ` + "`" + `<topic>-<descriptor>.<ext>` + "`" + ` using the context of
the first document that references them.
`
