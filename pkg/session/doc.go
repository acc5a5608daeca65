/*
Package session coordinates access to projects.

Manager serializes store operations per project with reference-counted local
locks and an optional distributed locker, and owns the editor sessions that
the HTTP and MCP adapters share.
*/
package session
