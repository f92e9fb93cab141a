/*
Package filesystem wraps the stat and directory-listing calls the service
makes against its volumes with retry logic for NFS stale file handle errors.

The workspace directory is commonly an NFS export shared with the machine that
drops source media, so an encoder can finish writing an output file while the
API's view of the directory still holds a stale handle. Only ESTALE is retried;
every other error is returned immediately.

# Usage

	info, err := filesystem.StatWithRetry(outputPath, filesystem.DefaultRetryConfig())

	entries, err := filesystem.ReadDirWithRetry(workspaceDir, filesystem.DefaultRetryConfig())

# Retry Behavior

Defaults: 3 retries, 50ms initial backoff doubling up to 500ms.

# Metrics

Operations are labelled with a volume name resolved by [VolumeResolver]
(longest-prefix match over the configured workspace, scratch, and database
directories) and reported through the [Observer] installed with [SetObserver].
Until an observer is installed nothing is recorded.
*/
package filesystem
