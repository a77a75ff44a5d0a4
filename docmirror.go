// Package docmirror ingests third-party documentation sites into a local,
// versioned corpus of markdown files. Starting from a manifest URL (a
// structured index, a full-content dump, or an XML sitemap) it discovers
// page URLs, fetches them within robots.txt and rate constraints,
// normalizes the content to markdown, and records every attempt in a
// per-run ledger.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, fs/).
package docmirror
