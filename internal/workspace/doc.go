/*
Package workspace maps user-supplied file references onto the shared
workspace directory and lists the media files it contains.

# Path Resolution

References are resolved without touching the filesystem:

	ws := workspace.New("/workspace")
	ws.Resolve("clip.mp4")       // "/workspace/clip.mp4"
	ws.Resolve("/mnt/clip.mp4")  // "/mnt/clip.mp4"

A reference of the form "concat:a.mp4|b.mp4" names a sequence of inputs for
the encoder's concat demuxer. [IsConcat] recognises it and
[Workspace.ResolveConcat] resolves each entry with the plain rules above.
Resolution never fails and never checks existence; the caller decides when a
missing file is an error.

# Listing

[Workspace.List] returns the media files directly inside the root, sorted by
name. Stat calls go through the filesystem package so stale NFS handles are
retried.
*/
package workspace
