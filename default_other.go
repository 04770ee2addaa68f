//go:build !windows

package selfstore

// The file of a running executable can be replaced by renaming over it.
func defaultUpdater(c *config) ImageUpdater {
	return &RenameUpdater{Logger: c.logger}
}
