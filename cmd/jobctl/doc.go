// Command jobctl inspects and maintains the job history written by the
// FFmpeg CUDA API server.
//
// Usage:
//
//	jobctl [--database-dir DIR] <command>
//
// Commands:
//
//	list    Recent jobs, newest first. Prints a table on a terminal and
//	        JSON otherwise (or with --json). --limit caps the count.
//
//	show    One job record as JSON: jobctl show <id>
//
//	stats   Job totals by status.
//
//	prune   Delete records older than a given age:
//	        jobctl prune --older-than 720h
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//
// jobctl never creates a database. It can run while the server is up; the
// history uses SQLite WAL mode.
package main
