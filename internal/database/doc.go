// Package database provides SQLite storage for the encode job history.
//
// Every /encode request that reaches a verdict is written as one row of the
// jobs table: request paths, the command that ran, status, error type,
// return code, duration and output size. The history backs the /jobs
// endpoints and the jobctl admin tool.
//
// The database uses WAL mode so the API can keep writing while jobctl reads.
package database
