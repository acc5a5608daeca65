/*
Package ports defines the driven ports (interfaces) of the editor.

These interfaces decouple the editor session from storage and integration
backends. Implementations live under pkg/adapters and internal/adapters.

# Key Interfaces

  - ProjectStore: loads and saves project payloads (pages, blocks, settings).
  - VersionStore: keeps version snapshots for rollback and publishing.
  - Catalog: supplies the block palette used by drop-from-catalog.
  - AssetStore: holds uploaded files.
  - DistributedLocker: serializes access to a project across replicas.

RunProjectStoreContract and RunVersionStoreContract are reusable suites every
store implementation runs in its own tests.
*/
package ports
