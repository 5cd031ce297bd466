package mcpserver

// PostFormatContract describes the canonical Markdown post format that
// LLM consumers should follow when creating or updating posts.
const PostFormatContract = `# Inkwell Post Format Contract

Every Markdown document stored in Inkwell MUST follow this structure.

## Posts

` + "```" + `markdown
---
title: Human-readable title               # REQUIRED
author: Jane Doe                          # OPTIONAL - defaults to the site author
date: 2024-01-15 09:30:00 +0100           # REQUIRED - publication timestamp
categories:                               # OPTIONAL - broad topics, YAML list
  - programming
  - rust
tags:                                     # OPTIONAL - fine-grained labels
  - async
  - tokio
hidden: false                             # OPTIONAL - true hides from listings and the feed
---

Body text in standard Markdown (GitHub-flavored).
` + "```" + `

## Rules

1. **YAML front-matter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` field is required.** It is the primary display name everywhere.
3. **` + "`" + `date` + "`" + ` uses the canonical layout** ` + "`" + `YYYY-MM-DD HH:MM:SS +ZZZZ` + "`" + `
   (e.g. ` + "`" + `2024-01-15 09:30:00 +0100` + "`" + `). The timezone offset is part of the value.
4. **Published posts** live in ` + "`" + `_posts/` + "`" + ` and are named
   ` + "`" + `YYYY-MM-DD-slug.md` + "`" + `. The filename date must not be later than the
   front-matter date. The ` + "`" + `slug` + "`" + ` part is lowercase, kebab-case.
5. **Drafts** live in ` + "`" + `_drafts/` + "`" + ` with any ` + "`" + `.md` + "`" + ` filename (no date prefix).
   Publishing a draft means renaming it into ` + "`" + `_posts/` + "`" + ` with a date prefix.
6. **Categories and tags** are lowercase, kebab-case. A scalar value is accepted
   (` + "`" + `tags: rust` + "`" + `) but a YAML list is preferred.
7. **Encoding** is UTF-8 with a trailing newline.

## Pages

Standalone pages (about, contact) live outside ` + "`" + `_posts/` + "`" + ` and ` + "`" + `_drafts/` + "`" + `
and use a smaller front-matter schema:

` + "```" + `markdown
---
title: About
icon: user                                # OPTIONAL - navigation icon name
order: 2                                  # OPTIONAL - navigation sort position
---
` + "```" + `

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the post body.
- Assets are stored in the shared ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference in posts using the absolute path: ` + "`" + `![description](/attachments/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./attachments/...` + "`" + ` — always use ` + "`" + `/attachments/filename` + "`" + `.

## Example

` + "```" + `markdown
---
title: Profiling async Rust with tokio-console
author: Jane Doe
date: 2024-01-20 18:45:00 +0100
categories:
  - programming
  - rust
tags:
  - async
  - profiling
---

# Profiling async Rust with tokio-console

Last week I spent an evening chasing a stalled task...

![Console screenshot](/attachments/tokio-console-2024-01-20.png)
` + "```" + `
`
