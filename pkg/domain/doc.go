/*
Package domain contains the core domain models of the pagecraft editor.

It defines the entities every other package speaks in: Blocks and their
responsive style overrides, Pages, project snapshots, Versions and catalog
items. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Block: a node of the page tree, stored flat with a parent back-reference and a sibling position.
  - Page: an ordered list of top-level blocks plus path, metadata and injected code.
  - ProjectData: the persisted payload (pages + settings) exchanged with stores.
  - Version: an immutable, tagged snapshot of ProjectData.
  - CatalogItem: a palette template used by drop-from-catalog.
*/
package domain
