/*
Package pagecraft is the editing engine of a visual page builder: projects made
of pages, pages made of nested blocks, and an editor session that applies every
user operation together with its undo history and autosave bookkeeping.

# Concept

A project is persisted as a single payload (pages, blocks, settings) through a
ports.ProjectStore. Editing happens in an editor.Session, which owns the block
document of the current page, the selection, the clipboard, the undo stack and
an autosave coordinator. The Workspace hands out at most one session per
project and serializes store access per project, optionally across replicas
through a distributed lock.

Backends are adapters: in-memory, JSON files, Redis, SQL (sqlite, postgres,
mysql) and MongoDB all implement the same contracts, and an encryption or
redaction middleware can wrap any of them.

# Usage

	ws := pagecraft.New(
		pagecraft.WithProjectStore(file.New(".pagecraft/data")),
		pagecraft.WithLogger(logging.New(slog.LevelInfo)),
	)
	defer ws.Close(ctx)

	id, err := ws.CreateProject(ctx, "Landing page")
	if err != nil {
		log.Fatal(err)
	}

	sess, err := ws.Open(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	heading := domain.NewBlock(domain.BlockHeading)
	heading.Content["text"] = "Welcome"
	if _, err := sess.Insert(heading, nil, 0); err != nil {
		log.Fatal(err)
	}
	sess.Undo()

Saving is automatic (debounced after each change, plus a periodic tick) and can
be forced with Session.Save. Snapshots are managed through Workspace.Versions.
*/
package pagecraft
