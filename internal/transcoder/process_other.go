//go:build !unix

package transcoder

import "os/exec"

// configureProcessGroup keeps exec's default cancellation, which kills only
// the encoder process itself.
func configureProcessGroup(*exec.Cmd) {}
